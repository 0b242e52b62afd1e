package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestContent_UnmarshalBothShapes(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`"plain text"`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Content != "plain text" || c.Mime != MimeMarkdown {
		t.Errorf("bare string = %+v", c)
	}

	c = Content{}
	if err := json.Unmarshal([]byte(`{"content":"body","mime":"text/plain"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Content != "body" || c.Mime != "text/plain" {
		t.Errorf("object = %+v", c)
	}

	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Error("expected error for non-string, non-object content")
	}
}

func TestBoard_JSONKeyOrder(t *testing.T) {
	data, err := json.Marshal(NewBoard())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	last := -1
	for _, key := range []string{`"todo"`, `"in-progress"`, `"testing"`, `"done"`} {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, s)
		}
		if idx < last {
			t.Fatalf("keys out of order in %s", s)
		}
		last = idx
	}
}

func TestBoard_CardOmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(Card{ID: "1", Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{"prio", "category", "assignedTo", "description", "details", "references", "tag"} {
		if strings.Contains(s, key) {
			t.Errorf("empty %s serialized: %s", key, s)
		}
	}
	// id, title, and creation_time always appear.
	for _, key := range []string{`"id"`, `"title"`, `"creation_time"`} {
		if !strings.Contains(s, key) {
			t.Errorf("missing %s in %s", key, s)
		}
	}
}

func TestBoard_GroupAccessors(t *testing.T) {
	b := NewBoard()
	b.SetGroup(GroupTesting, []Card{{ID: "1"}})

	if len(b.Group(GroupTesting)) != 1 {
		t.Error("SetGroup/Group mismatch")
	}
	if b.Group("nope") != nil {
		t.Error("unknown group should be nil")
	}
	b.SetGroup("nope", []Card{{ID: "2"}}) // ignored
	if b.CardCount() != 1 {
		t.Errorf("card count = %d, want 1", b.CardCount())
	}
}

func TestBoard_AllCardsGlobalOrder(t *testing.T) {
	b := NewBoard()
	b.SetGroup(GroupTodo, []Card{{ID: "1"}, {ID: "2"}})
	b.SetGroup(GroupTesting, []Card{{ID: "3"}})
	b.SetGroup(GroupDone, []Card{{ID: "4"}})

	all := b.AllCards()
	want := []string{"1", "2", "3", "4"}
	if len(all) != len(want) {
		t.Fatalf("len = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("all[%d] = %q, want %q", i, all[i].ID, id)
		}
	}
}

func TestBoard_FindCard(t *testing.T) {
	b := NewBoard()
	b.SetGroup(GroupInProgress, []Card{{ID: "7"}})

	g, i := b.FindCard("7")
	if g != GroupInProgress || i != 0 {
		t.Errorf("FindCard = (%q, %d)", g, i)
	}
	if g, i := b.FindCard("missing"); g != "" || i != -1 {
		t.Errorf("missing card = (%q, %d), want (\"\", -1)", g, i)
	}
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := NewBoard()
	b.SetGroup(GroupTodo, []Card{{ID: "1", Title: "orig"}})

	c := b.Clone()
	c.Todo[0].Title = "changed"
	c.SetGroup(GroupDone, []Card{{ID: "2"}})

	if b.Todo[0].Title != "orig" {
		t.Error("clone shares card storage with original")
	}
	if len(b.Done) != 0 {
		t.Error("clone shares group slices with original")
	}
}

func TestCard_CloneDeepCopiesPointers(t *testing.T) {
	p := 5.0
	c := Card{
		ID:          "1",
		Prio:        &p,
		AssignedTo:  &Person{Name: "a"},
		Description: &Content{Content: "d"},
		References:  []string{"2"},
	}

	out := c.Clone()
	*out.Prio = 9
	out.AssignedTo.Name = "b"
	out.Description.Content = "x"
	out.References[0] = "3"

	if *c.Prio != 5 || c.AssignedTo.Name != "a" || c.Description.Content != "d" || c.References[0] != "2" {
		t.Errorf("clone shares storage: %+v", c)
	}
}

func TestValidGroup(t *testing.T) {
	for _, g := range Groups {
		if !ValidGroup(g) {
			t.Errorf("ValidGroup(%q) = false", g)
		}
	}
	for _, g := range []GroupKey{"", "Todo", "backlog"} {
		if ValidGroup(g) {
			t.Errorf("ValidGroup(%q) = true", g)
		}
	}
}
