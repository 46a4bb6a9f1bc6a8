package service

import (
	"context"
	"testing"
)

func newTestService() *Service {
	return NewService(NewMemStore())
}

func TestReadFlagMonotonic(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateParams{
		RecipientID: "B",
		Type:        "lobby_invite",
		Title:       "Lobby invite",
		Message:     "alice invited you",
		Payload:     map[string]any{"invite_id": "inv-1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.IsRead {
		t.Fatal("new notification must start unread")
	}

	for i := 0; i < 3; i++ {
		if err := svc.MarkRead(ctx, n.NotifyID); err != nil {
			t.Fatalf("mark read #%d: %v", i, err)
		}
		list, _ := svc.List(ctx, "B", false)
		if len(list) != 1 || !list[0].IsRead {
			t.Fatalf("read flag flipped back on pass %d: %+v", i, list)
		}
	}
}

func TestMarkReadByInvite(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, inviteID := range []string{"inv-1", "inv-1", "inv-2"} {
		if _, err := svc.Create(ctx, CreateParams{
			RecipientID: "B",
			Type:        "lobby_invite",
			Payload:     map[string]any{"invite_id": inviteID},
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.MarkReadByInvite(ctx, "inv-1"); err != nil {
		t.Fatalf("mark read by invite: %v", err)
	}
	list, _ := svc.List(ctx, "B", false)
	var read, unread int
	for _, n := range list {
		if n.IsRead {
			read++
		} else {
			unread++
		}
	}
	if read != 2 || unread != 1 {
		t.Errorf("read/unread = %d/%d, want 2/1", read, unread)
	}

	unreadOnly, _ := svc.List(ctx, "B", true)
	if len(unreadOnly) != 1 || unreadOnly[0].Payload["invite_id"] != "inv-2" {
		t.Errorf("unread filter = %+v", unreadOnly)
	}
}

func TestClearForRecipient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, uid := range []string{"B", "B", "C"} {
		if _, err := svc.Create(ctx, CreateParams{RecipientID: uid, Type: "system"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Clear(ctx, "B"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if list, _ := svc.List(ctx, "B", false); len(list) != 0 {
		t.Errorf("B notifications after clear = %d", len(list))
	}
	if list, _ := svc.List(ctx, "C", false); len(list) != 1 {
		t.Errorf("C notifications must survive, got %d", len(list))
	}
}
