package posts

import (
	"errors"
	"time"
)

// ErrInvalidPost は保存できない投稿が渡されたことを表します。
var ErrInvalidPost = errors.New("invalid post")

// Reaction は good / bad それぞれの反応数と、反応したユーザーの集合です。
// 同じユーザーが二重に反応しないよう Users で重複を管理します。
type Reaction struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Post は投稿 1 件です。作成後は変更されません。
type Post struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Creator   string   `json:"creator"`
	Good      Reaction `json:"good"`
	Bad       Reaction `json:"bad"`
	CreatedAt int64    `json:"created_at"` // Unix 秒
}

// InsertAck は保存完了時にストアが返す受領情報です。
type InsertAck struct {
	ID string `json:"id"`
}

// NewPost は反応を空にした新しい投稿を作成します。
func NewPost(id, content, creator string, now time.Time) Post {
	return Post{
		ID:        id,
		Content:   content,
		Creator:   creator,
		Good:      Reaction{Users: []string{}},
		Bad:       Reaction{Users: []string{}},
		CreatedAt: now.Unix(),
	}
}

// CreatedTime は作成日時を time.Time で返します。
func (p Post) CreatedTime() time.Time {
	return time.Unix(p.CreatedAt, 0)
}

func (p Post) validate() error {
	switch {
	case p.ID == "":
		return errors.Join(ErrInvalidPost, errors.New("id is required"))
	case p.Creator == "":
		return errors.Join(ErrInvalidPost, errors.New("creator is required"))
	case p.Content == "":
		return errors.Join(ErrInvalidPost, errors.New("content is required"))
	}
	return nil
}
