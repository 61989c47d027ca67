package dto

// UpdateUserRequest represents a request to update user profile fields.
// Only non-nil fields are applied.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Name     *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Bio      *string `json:"bio,omitempty" binding:"omitempty,max=500"`
	Location *string `json:"location,omitempty" binding:"omitempty,max=100"`
	Company  *string `json:"company,omitempty" binding:"omitempty,max=100"`
}

// AssignRoleRequest represents a request to change a user's role
type AssignRoleRequest struct {
	RoleName string `json:"role" binding:"required"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserInfo `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

// CountResponse represents a bare count result
type CountResponse struct {
	Count int64 `json:"count"`
}
