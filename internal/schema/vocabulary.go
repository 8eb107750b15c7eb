// Package schema resolves the logical fields of the canonical record model
// against the physical columns of whatever spreadsheet export arrives.
// Column names vary between files and periods; each logical field carries an
// ordered vocabulary of acceptable header spellings, and resolution degrades
// to a containment search before giving up.
package schema

// Field identifies a logical column the extractors need.
type Field string

const (
	BookingDate            Field = "booking.date"
	BookingClient          Field = "booking.client"
	BookingQuantity        Field = "booking.quantity"
	BookingID              Field = "booking.id"
	BookingOriginPort      Field = "booking.origin_port"
	BookingDestinationPort Field = "booking.destination_port"
	BookingStatus          Field = "booking.status"

	MultimodalClient        Field = "multimodal.client"
	MultimodalCause         Field = "multimodal.cause"
	MultimodalArea          Field = "multimodal.area"
	MultimodalJustification Field = "multimodal.justification"
	MultimodalDate          Field = "multimodal.date"
	MultimodalPort          Field = "multimodal.port"
	MultimodalOperationType Field = "multimodal.operation_type"

	TransportShipper        Field = "transport.shipper"
	TransportProgramStatus  Field = "transport.program_status"
	TransportDeadlineStatus Field = "transport.deadline_status"
	TransportProgramType    Field = "transport.program_type"
	TransportReferenceDate  Field = "transport.reference_date"
	TransportJustification  Field = "transport.justification"
	TransportOriginPort     Field = "transport.origin_port"
)

// vocabulary maps each logical field to its ordered list of acceptable
// header spellings. Order encodes priority among exact matches. The lists
// mirror what the operational sources have actually shipped, trailing
// spaces and all; static configuration, never derived at runtime.
var vocabulary = map[Field][]string{
	BookingDate: {"DATA_BOOKING", "data_booking", "DATA", "data", "DATA_BOOKING "},
	BookingClient: {
		"NOME_FANTASIA", "Cliente", "cliente", "Embarcador", "embarcador",
		"NOME_FANTASIA ", "cliente embarcador", "cliente_embarcador",
		"nome embarcador", "nome_embarcador", "shipper", "remetente",
	},
	BookingQuantity: {"QTDE_CONTAINER", "QTDE_CONT", "QTD_CONTAINER", "QUANTIDADE_BOX_EMBARCADOS"},
	BookingID:       {"BOOKING", "Booking", "NUM_BOOKING", "NUM_BOOKING ", "BOOKING_ID", "ID_BOOKING"},
	BookingOriginPort: {
		"SIGLA_PORTO_ORIGEM", "Porto da Operação", "SIGLA_PORTO_ORIGEM ",
		"SIGLA_PORTO_ORIGEM_x", "SIGLA_PORTO_ORIGEM_y", "Porto de origem",
	},
	BookingDestinationPort: {"SIGLA_PORTO_DESTINO", "SIGLA_PORTO_DESTINO ", "Porto de destino"},
	BookingStatus:          {"DESC_STATUS", "Status da Operação", "STATUS", "desc_status", "status"},

	MultimodalClient: {"Cliente", "cliente", "NOME_FANTASIA", "Embarcador", "embarcador"},
	MultimodalCause:  {"Causador Reagenda", "Causador reagenda", "Causador da Reagenda"},
	MultimodalArea: {
		"Área Responsável", "Area Responsável", "AREA RESPONSÁVEL",
		"Area Responsavel", "AREA RESPONSAVEL",
	},
	MultimodalJustification: {
		"Justificativa Reagendamento", "Justificativa de Reagendamento", "Justificativa",
	},
	MultimodalDate: {
		"Agendamento", "Data Agendamento", "Agendamento.1",
		"Última Alteração da Agenda", "ultima alteracao",
	},
	MultimodalPort:          {"Porto da Operação", "Porto da Operacao"},
	MultimodalOperationType: {"Tipo de Operação", "Tipo de Operacao", "TIPO_OP_ESP_UNIF"},

	TransportShipper: {"Embarcador", "embarcador", "Cliente", "cliente", "NOME_FANTASIA"},
	TransportProgramStatus: {
		"Situação programação", "Situação programacao", "Situacao programação",
		"Situação Programação", "Situação de programação", "Situacao de programacao",
		"Situação da programação", "Situacao da programacao",
		"Status programação", "Status programacao",
		"Sit prog", "Situacao prog",
	},
	TransportDeadlineStatus: {
		"Situação prazo programação", "Situacao prazo programacao",
		"Situação prazo programação ", "Situacao Prazo Programacao",
		"Status prazo programação", "Status prazo programacao",
		"Situação do prazo", "Status do prazo",
	},
	TransportProgramType: {
		"Tipo de programação", "tipo de programação",
		"Tipo de programacao", "tipo de programacao",
	},
	TransportReferenceDate: {
		"Previsão início atendimento (BRA)", "Previsao inicio atendimento (BRA)",
		"Previsão início atendimento", "Previsao inicio atendimento",
		"Data referência", "Data referencia",
	},
	TransportJustification: {
		"Justificativa de atraso de programação", "Campo Digitável Justificativa",
		"Justificativa atraso", "Justificativa",
		"Justificativa de atraso de programação ",
	},
	TransportOriginPort: {"Porto de origem", "Porto origem", "SIGLA_PORTO_ORIGEM"},
}

// Candidates returns the ordered header vocabulary for a logical field.
func Candidates(f Field) []string {
	return vocabulary[f]
}
