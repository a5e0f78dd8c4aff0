package dto

// PermissionTable is the role→permissions mapping exchanged with the role
// management screen.
type PermissionTable struct {
	Entries map[string][]string `json:"entries" binding:"required"`
}
