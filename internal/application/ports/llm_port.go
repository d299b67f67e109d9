package ports

import "context"

// LLMService puerto de salida hacia el modelo de lenguaje del asistente virtual.
// El caso de uso solo conoce este contrato, no el proveedor concreto.
type LLMService interface {
	// Answer responde la consulta del usuario usando snapshot como contexto de inventario.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Answer(ctx context.Context, query string, snapshot string) (string, error)
	// Model nombre del modelo configurado (informativo).
	Model() string
}
