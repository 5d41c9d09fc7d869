package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/session"
	"github.com/mmynk/receiptsplit/internal/storage"
)

func testReceipt() *models.Receipt {
	return &models.Receipt{
		ID:           "r1",
		MerchantName: "Joe's Diner",
		Items: []models.ReceiptItem{
			{ID: "steak", Description: "Steak", Price: 30.0, Quantity: 1, AssignedTo: []string{}},
			{ID: "soda", Description: "Soda", Price: 2.5, Quantity: 2, AssignedTo: []string{}},
		},
		Subtotal: 35.0,
		Tax:      []models.TaxItem{{Description: "Tax", Amount: 3.5}},
		Tip:      7.0,
		Fees:     []models.FeeItem{},
		Total:    45.5,
	}
}

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "receiptsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	ctx := context.Background()

	t.Run("CreateSession generates ID", func(t *testing.T) {
		sess := &storage.Session{
			State:     session.New("", testReceipt()),
			ExpiresAt: now.Add(time.Hour).Unix(),
		}

		if err := store.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if sess.ID == "" {
			t.Error("Expected session ID to be generated")
		}
		if sess.State.SessionID != sess.ID {
			t.Errorf("State.SessionID = %q, want %q", sess.State.SessionID, sess.ID)
		}
		if sess.CreatedAt != now.Unix() {
			t.Errorf("CreatedAt = %d, want %d", sess.CreatedAt, now.Unix())
		}
	})

	t.Run("GetSession retrieves complete state", func(t *testing.T) {
		state := session.New("", testReceipt()).Continue()
		state, ann, err := state.AddPerson("Ann")
		if err != nil {
			t.Fatalf("AddPerson failed: %v", err)
		}
		state = state.AssignItem("steak", ann.ID).SelectPerson(ann.ID)

		original := &storage.Session{State: state, ExpiresAt: now.Add(time.Hour).Unix()}
		if err := store.CreateSession(ctx, original); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		retrieved, err := store.GetSession(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}

		if retrieved.State.Phase != session.PhaseSplitting {
			t.Errorf("Phase = %s, want %s", retrieved.State.Phase, session.PhaseSplitting)
		}
		if retrieved.State.SelectedPersonID != ann.ID {
			t.Errorf("SelectedPersonID = %q, want %q", retrieved.State.SelectedPersonID, ann.ID)
		}
		if len(retrieved.State.People) != 1 || retrieved.State.People[0].Name != "Ann" {
			t.Errorf("People = %+v, want [Ann]", retrieved.State.People)
		}
		if retrieved.State.Receipt.MerchantName != "Joe's Diner" {
			t.Errorf("MerchantName = %q", retrieved.State.Receipt.MerchantName)
		}
		got := retrieved.State.Receipt.Items[0].AssignedTo
		if len(got) != 1 || got[0] != ann.ID {
			t.Errorf("steak assigned to %v, want [%s]", got, ann.ID)
		}
		splits := retrieved.State.Splits()
		if len(splits) != 1 || splits[0].Subtotal != 30.0 {
			t.Errorf("splits = %+v, want Ann with subtotal 30", splits)
		}
	})

	t.Run("UpdateSession replaces snapshot", func(t *testing.T) {
		sess := &storage.Session{State: session.New("", testReceipt()), ExpiresAt: now.Add(time.Hour).Unix()}
		if err := store.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		next, _, err := sess.State.AddPerson("Bob")
		if err != nil {
			t.Fatalf("AddPerson failed: %v", err)
		}
		sess.State = next
		sess.ExpiresAt = now.Add(2 * time.Hour).Unix()
		if err := store.UpdateSession(ctx, sess); err != nil {
			t.Fatalf("UpdateSession failed: %v", err)
		}

		retrieved, err := store.GetSession(ctx, sess.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if len(retrieved.State.People) != 1 {
			t.Errorf("People count = %d, want 1", len(retrieved.State.People))
		}
		if retrieved.ExpiresAt != sess.ExpiresAt {
			t.Errorf("ExpiresAt = %d, want %d", retrieved.ExpiresAt, sess.ExpiresAt)
		}
	})

	t.Run("GetSession returns ErrNotFound for nonexistent session", func(t *testing.T) {
		_, err := store.GetSession(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateSession returns ErrNotFound for nonexistent session", func(t *testing.T) {
		err := store.UpdateSession(ctx, &storage.Session{ID: "nonexistent-id", ExpiresAt: now.Add(time.Hour).Unix()})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("expired sessions are invisible and evicted", func(t *testing.T) {
		sess := &storage.Session{State: session.New("", testReceipt()), ExpiresAt: now.Add(time.Minute).Unix()}
		if err := store.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}

		later := now.Add(2 * time.Minute)
		store.now = func() time.Time { return later }
		defer func() { store.now = func() time.Time { return now } }()

		if !sess.Expired(later) {
			t.Error("Expected session to report expired")
		}
		if _, err := store.GetSession(ctx, sess.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for expired session, got %v", err)
		}

		n, err := store.DeleteExpired(ctx, later)
		if err != nil {
			t.Fatalf("DeleteExpired failed: %v", err)
		}
		if n != 1 {
			t.Errorf("DeleteExpired removed %d sessions, want 1", n)
		}
	})
}
