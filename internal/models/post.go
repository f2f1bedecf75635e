package models

import (
	"time"
)

// PostPreviewLength is the number of runes Post.String keeps.
const PostPreviewLength = 15

// Post is a user-authored text entry, optionally grouped and illustrated.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index;<-:create" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index;<-:create" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	// Image is the storage path of the uploaded picture, e.g. "posts/small.gif".
	Image string `gorm:"size:255" json:"image,omitempty"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// PostOrder is the default newest-first ordering.
const PostOrder = "pub_date DESC, id DESC"

func (p *Post) String() string {
	r := []rune(p.Text)
	if len(r) > PostPreviewLength {
		r = r[:PostPreviewLength]
	}
	return string(r)
}

// HasGroup reports whether the post belongs to a group.
func (p *Post) HasGroup() bool {
	return p.GroupID != nil && p.Group != nil
}
