package models

import "time"

// Post is a blog entry. A post starts as a draft and may later be published.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Published bool      `gorm:"index;not null;default:false" json:"published"`
	ImageURL  *string   `gorm:"size:1024" json:"image_url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"-"`
	Likes     []Like    `gorm:"foreignKey:PostID" json:"-"`
}

// PostView is the read shape of a post: the post itself plus its author,
// comments and aggregate counts.
type PostView struct {
	Post
	Author       Author    `json:"author"`
	Comments     []Comment `json:"comments"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
}
