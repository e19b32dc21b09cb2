package models

// Group is a student group.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupStudent is an element of /groups/{id}/students/list.
type GroupStudent struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
