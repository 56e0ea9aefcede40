package model

import "github.com/lib/pq"

// UserInfo is the optional profile extension, one row per user. The row is
// created empty at signup; optional fields stay NULL until the owner edits
// them.
type UserInfo struct {
	UserID     int            `json:"user_id"`
	Fullname   *string        `json:"fullname"`
	About      *string        `json:"about"`
	Github     *string        `json:"github"`
	Portfolio  *string        `json:"portfolio"`
	ImageURL   *string        `json:"image_url"`
	Location   *string        `json:"location"`
	Linkedin   *string        `json:"linkedin"`
	Skills     pq.StringArray `json:"skills" swaggertype:"array,string"`
	TechStack  pq.StringArray `json:"tech_stack" swaggertype:"array,string"`
	OpenToWork bool           `json:"open_to_work"`
}
