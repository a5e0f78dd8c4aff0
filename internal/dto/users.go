package dto

// UserRecord is one entry of the user directory as served by the attendance
// backend, with only the fields the console screens use.
type UserRecord struct {
	ID       string   `json:"id"`
	Usuario  string   `json:"usuario"`
	Nombre   string   `json:"nombre,omitempty"`
	Correo   string   `json:"correo,omitempty"`
	Roles    []string `json:"roles"`
	Activo   bool     `json:"activo"`
	Sucursal string   `json:"sucursal,omitempty"`
}

// ListUsersQuery carries the directory listing filters.
type ListUsersQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=25" binding:"min=1,max=200"`
}

// UserListResponse wraps a directory page.
type UserListResponse struct {
	Users    []UserRecord `json:"users"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int          `json:"total"`
}

// CreateUserRequest carries a new directory entry for the backend.
type CreateUserRequest struct {
	Usuario  string   `json:"usuario" binding:"required"`
	Nombre   string   `json:"nombre" binding:"required"`
	Correo   string   `json:"correo"`
	Roles    []string `json:"roles" binding:"required,min=1"`
	Sucursal string   `json:"sucursal"`
}

// UpdateUserRequest carries the editable fields of a directory entry.
type UpdateUserRequest struct {
	Nombre   string   `json:"nombre"`
	Correo   string   `json:"correo"`
	Roles    []string `json:"roles"`
	Sucursal string   `json:"sucursal"`
}

// UpdateUserStatusRequest toggles an account active or inactive.
type UpdateUserStatusRequest struct {
	Activo *bool `json:"activo" binding:"required"`
}
