package dto

// Formatos de reporte.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ReportQuery parámetros de GET /reportes/:tipo.
type ReportQuery struct {
	ListQuery
	Formato        string `query:"formato"`
	Disponibilidad string `query:"disponibilidad"`
	MetodoPago     string `query:"metodo_pago"`
	Desde          string `query:"desde"`
	Hasta          string `query:"hasta"`
}

// ReportFile documento generado.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
