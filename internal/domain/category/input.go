package category

import "strings"

// Input is the admin create/update payload. The slug is always derived
// from Name.
type Input struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Image       string `json:"image"`
	ParentID    string `json:"parent"`
	Featured    bool   `json:"featured"`
}

func (in Input) trimmed() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ParentID = strings.TrimSpace(in.ParentID)
	return in
}
