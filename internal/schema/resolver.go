package schema

import (
	"log/slog"
	"strings"

	"opsdiary/internal/normalize"
)

// Resolve finds the physical header backing a list of candidate spellings.
//
// Phase one is an exact search over normalized forms, ordered by candidate
// priority first and header position second. Phase two falls back to a
// containment search ordered by header position: the first header whose
// normalized text contains any normalized candidate wins. The phase-two
// ordering is intentionally header-first, not candidate-first; changing it
// changes which column wins under ambiguous header sets.
//
// The second return is false when neither phase matches. Callers treat that
// as "field unavailable" and degrade, never error.
func Resolve(headers []string, candidates []string) (string, bool) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize.Text(h)
	}

	for _, cand := range candidates {
		want := normalize.Text(cand)
		for i, h := range headers {
			if normalized[i] == want {
				return h, true
			}
		}
	}

	for i, h := range headers {
		for _, cand := range candidates {
			if strings.Contains(normalized[i], normalize.Text(cand)) {
				return h, true
			}
		}
	}

	return "", false
}

// ResolveField resolves a logical field against a header row, logging a
// structured warning on a miss so operators can see which vocabulary failed
// against which headers. The returned value is unaffected by logging.
func ResolveField(logger *slog.Logger, headers []string, f Field) (string, bool) {
	header, ok := Resolve(headers, Candidates(f))
	if !ok && logger != nil {
		logger.Warn("no column resolved for field",
			slog.String("field", string(f)),
			slog.Any("candidates", Candidates(f)),
			slog.Int("header_count", len(headers)))
	}
	return header, ok
}
