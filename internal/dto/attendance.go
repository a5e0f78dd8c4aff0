package dto

// AttendanceQuery carries the filters of an attendance listing.
type AttendanceQuery struct {
	From    string `form:"from" binding:"required"`
	To      string `form:"to" binding:"required"`
	Usuario string `form:"usuario"`
}

// AttendanceRecord is one check-in/check-out pair from the backend.
type AttendanceRecord struct {
	ID       string `json:"id"`
	Usuario  string `json:"usuario"`
	Nombre   string `json:"nombre,omitempty"`
	Fecha    string `json:"fecha"`
	Entrada  string `json:"entrada,omitempty"`
	Salida   string `json:"salida,omitempty"`
	Sucursal string `json:"sucursal,omitempty"`
	Estado   string `json:"estado,omitempty"`
}

// AttendanceDetail is one record with the capture metadata the detail
// screen shows.
type AttendanceDetail struct {
	AttendanceRecord
	Latitud  string `json:"latitud,omitempty"`
	Longitud string `json:"longitud,omitempty"`
	FotoURL  string `json:"fotoUrl,omitempty"`
	Notas    string `json:"notas,omitempty"`
}

// AttendanceListResponse wraps an attendance listing.
type AttendanceListResponse struct {
	Records []AttendanceRecord `json:"records"`
	From    string             `json:"from"`
	To      string             `json:"to"`
}
