package domain

import (
	"errors"
	"testing"
)

func TestListingInputCheck(t *testing.T) {
	in := ListingInput{Type: TypePhone, Name: "iPhone 12", Price: 50000, Description: "like new"}
	in.Normalize()
	if err := in.Check(); err == nil {
		t.Fatal("phone without IMEI must be rejected")
	}

	in.IMEI = "123456789012345"
	if err := in.Check(); err != nil {
		t.Fatalf("valid phone rejected: %v", err)
	}

	in.Storage = "48GB"
	if err := in.Check(); err == nil {
		t.Fatal("unknown storage size must be rejected")
	}
}

func TestNormalizeDefaultsTag(t *testing.T) {
	in := ListingInput{Type: TypeAccessory, Name: " case ", Description: "x"}
	in.Normalize()
	if in.Tag != TagNone {
		t.Fatalf("tag default = %q, want %q", in.Tag, TagNone)
	}
	if in.Name != "case" {
		t.Fatalf("name not trimmed: %q", in.Name)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{" 500 ", 500, false},
		{"0", 0, false},
		{"abc", 0, true},
		{"12.5", 0, true},
	}
	for _, c := range cases {
		got, err := ParseAmount("price", c.raw)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): want error", c.raw)
				continue
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("ParseAmount(%q): error is not a ValidationError", c.raw)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParseAmount(%q) = %d, %v; want %d", c.raw, got, err, c.want)
		}
	}
}

func TestDisplayImage(t *testing.T) {
	p := Product{}
	if p.DisplayImage() != PlaceholderImage {
		t.Fatal("empty image list must fall back to the placeholder")
	}
	p.Images = []string{"https://pub.example/a.jpg", "https://pub.example/b.jpg"}
	if p.DisplayImage() != "https://pub.example/a.jpg" {
		t.Fatal("first image is canonical")
	}
}

func TestConversationUnread(t *testing.T) {
	c := Conversation{UserID: "user-42", LastRepliedBy: "admin-1"}
	if c.Unread("admin-1") {
		t.Fatal("own reply must not read as unread")
	}
	if !c.Unread("user-42") {
		t.Fatal("other side's reply must read as unread")
	}
	empty := Conversation{}
	if empty.Unread("anyone") {
		t.Fatal("conversation with no messages has nothing unread")
	}
}
