package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Domain contains the JSONPlaceholder entities and the record type the
// syncer moves around.

// Resource kinds served by the API.
const (
	KindUser    = "users"
	KindPost    = "posts"
	KindComment = "comments"
	KindTodo    = "todos"
	KindAlbum   = "albums"
)

// Entity is a decoded API object with required fields and a stable key.
type Entity interface {
	Validate() error
	Key() string
}

type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

type User struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Address  *Address `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Company  *Company `json:"company,omitempty"`
}

func (u User) Key() string { return entityKey(KindUser, u.ID) }

func (u User) Validate() error {
	return required(KindUser, map[string]bool{
		"id":    u.ID != 0,
		"name":  u.Name != "",
		"email": u.Email != "",
	})
}

type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (p Post) Key() string { return entityKey(KindPost, p.ID) }

func (p Post) Validate() error {
	return required(KindPost, map[string]bool{
		"id":     p.ID != 0,
		"userId": p.UserID != 0,
		"title":  p.Title != "",
	})
}

type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"postId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

func (c Comment) Key() string { return entityKey(KindComment, c.ID) }

func (c Comment) Validate() error {
	return required(KindComment, map[string]bool{
		"id":     c.ID != 0,
		"postId": c.PostID != 0,
		"email":  c.Email != "",
	})
}

type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (t Todo) Key() string { return entityKey(KindTodo, t.ID) }

func (t Todo) Validate() error {
	return required(KindTodo, map[string]bool{
		"id":     t.ID != 0,
		"userId": t.UserID != 0,
		"title":  t.Title != "",
	})
}

type Album struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
}

func (a Album) Key() string { return entityKey(KindAlbum, a.ID) }

func (a Album) Validate() error {
	return required(KindAlbum, map[string]bool{
		"id":     a.ID != 0,
		"userId": a.UserID != 0,
		"title":  a.Title != "",
	})
}

// Record is a single fetched entity ready to be deduplicated and published.
type Record struct {
	Kind        string          `json:"kind"`
	Key         string          `json:"key"`
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload"`
}

func entityKey(kind string, id int) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

// required reports every missing field in a stable order.
func required(kind string, present map[string]bool) error {
	var errs []error
	for _, field := range []string{"id", "userId", "postId", "name", "title", "email"} {
		ok, checked := present[field]
		if checked && !ok {
			errs = append(errs, fmt.Errorf("%s: %s is required", kind, field))
		}
	}
	return errors.Join(errs...)
}
