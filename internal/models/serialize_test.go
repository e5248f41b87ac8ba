package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserSerialize(t *testing.T) {
	bd := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	u := User{ID: 1, Username: "alice", Email: "a@x.com", Password: "$2a$hash", BirthDate: &bd}
	u.Posts = []Post{{ID: 3}, {ID: 7}}
	u.Followers = []Follow{{Follower: User{Username: "bob"}}}
	u.Following = []Follow{{Followed: User{Username: "carol"}}, {Followed: User{Username: "dave"}}}

	resp := u.Serialize()
	if resp.BirthDate == nil || *resp.BirthDate != "1990-05-01" {
		t.Errorf("birth_date = %v", resp.BirthDate)
	}
	if len(resp.Posts) != 2 || resp.Posts[1] != 7 {
		t.Errorf("posts = %v", resp.Posts)
	}
	if len(resp.Followers) != 1 || resp.Followers[0] != "bob" {
		t.Errorf("followers = %v", resp.Followers)
	}
	if strings.Join(resp.Following, ",") != "carol,dave" {
		t.Errorf("following = %v", resp.Following)
	}

	b, _ := json.Marshal(resp)
	if strings.Contains(string(b), "hash") || strings.Contains(string(b), "password") {
		t.Errorf("password leaked: %s", b)
	}
}

func TestUserSerializeEmpty(t *testing.T) {
	b, _ := json.Marshal((&User{Username: "a"}).Serialize())
	s := string(b)
	for _, want := range []string{`"posts":[]`, `"followers":[]`, `"following":[]`, `"birth_date":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}

func TestPostSerialize(t *testing.T) {
	p := Post{ID: 2, Description: "d", Status: PostStatusArchived, UserID: 1, User: User{Username: "alice"}}
	p.Comments = []Comment{{Text: "one"}, {Text: "two"}}
	p.LikedBy = []Like{{User: User{Username: "bob"}}}

	resp := p.Serialize()
	if resp.Status != "archived" || resp.User != "alice" {
		t.Errorf("unexpected post: %+v", resp)
	}
	if resp.CommentsCount != 2 || resp.LikesCount != 1 || resp.LikedBy[0] != "bob" {
		t.Errorf("unexpected counts: %+v", resp)
	}
}

func TestPostStatusValid(t *testing.T) {
	for _, s := range PostStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []PostStatus{"", "APPROVED", "published"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2001-02-03"); err != nil {
		t.Errorf("ParseDate: %v", err)
	}
	if _, err := ParseDate("03/02/2001"); err == nil {
		t.Error("expected error for non ISO date")
	}
	if FormatDate(nil) != nil {
		t.Error("FormatDate(nil) should be nil")
	}
}
