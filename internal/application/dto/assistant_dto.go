package dto

// AssistantQueryRequest body de POST /assistant/query.
type AssistantQueryRequest struct {
	Query string `json:"consulta" validate:"required,min=2,max=1000"`
}

// AssistantQueryResponse respuesta del asistente virtual.
type AssistantQueryResponse struct {
	Answer string `json:"respuesta"`
	Model  string `json:"modelo,omitempty"`
}
