package models

import (
	"encoding/json"
	"log"
	"time"
)

type Post struct {
	Id        string    `json:"id"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	UserId    string    `json:"user"`
	CreatedAt time.Time `json:"date"`
}

func (p *Post) ToJson() []byte {
	j, err := json.Marshal(p)
	if err != nil {
		log.Fatalf("Failed to dump post to json: %s", err.Error())
	}
	return j
}

// User is a read-only projection of the users collection owned by the
// sibling auth service. Only the fields the post handlers need.
type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
