package guard

import (
	"database/sql"
	"testing"

	"retrospective/backend/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db := models.InitDB(":memory:")
	t.Cleanup(func() { db.Close() })

	for _, u := range []string{"adam", "brian", "carl"} {
		if _, err := db.Exec(`INSERT INTO users (username, email, password_hash) VALUES (?, ?, 'x')`,
			u, u+"@example.com"); err != nil {
			t.Fatalf("seed user %s: %v", u, err)
		}
	}
	if _, err := db.Exec(`INSERT INTO posts (owner_id, title) VALUES (1, 'first post')`); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return db
}

func TestNormalizePair(t *testing.T) {
	lo, hi := NormalizePair(5, 2)
	if lo != 2 || hi != 5 {
		t.Errorf("NormalizePair(5,2) = (%d,%d), want (2,5)", lo, hi)
	}
	lo, hi = NormalizePair(2, 5)
	if lo != 2 || hi != 5 {
		t.Errorf("NormalizePair(2,5) = (%d,%d), want (2,5)", lo, hi)
	}
}

func TestCheckChat(t *testing.T) {
	db := testDB(t)

	if err := CheckChat(db, 1, 1); err != ErrSelfChat {
		t.Errorf("self chat = %v, want ErrSelfChat", err)
	}
	if err := CheckChat(db, 1, 2); err != nil {
		t.Errorf("fresh pair = %v, want nil", err)
	}

	lo, hi := NormalizePair(1, 2)
	if _, err := db.Exec(`INSERT INTO chats (sender_id, receiver_id, pair_lo, pair_hi) VALUES (1, 2, ?, ?)`, lo, hi); err != nil {
		t.Fatalf("insert chat: %v", err)
	}

	// both orderings of an existing pair must be rejected
	if err := CheckChat(db, 1, 2); err != ErrChatExists {
		t.Errorf("same ordering = %v, want ErrChatExists", err)
	}
	if err := CheckChat(db, 2, 1); err != ErrChatExists {
		t.Errorf("reversed ordering = %v, want ErrChatExists", err)
	}
	if err := CheckChat(db, 1, 3); err != nil {
		t.Errorf("unrelated pair = %v, want nil", err)
	}
}

func TestCheckLike(t *testing.T) {
	db := testDB(t)

	if err := CheckLike(db, 2, 1); err != nil {
		t.Errorf("fresh like = %v, want nil", err)
	}
	if _, err := db.Exec(`INSERT INTO likes (owner_id, post_id) VALUES (2, 1)`); err != nil {
		t.Fatalf("insert like: %v", err)
	}
	if err := CheckLike(db, 2, 1); err != ErrAlreadyLiked {
		t.Errorf("duplicate like = %v, want ErrAlreadyLiked", err)
	}
	if err := CheckLike(db, 3, 1); err != nil {
		t.Errorf("other principal = %v, want nil", err)
	}
}

func TestCheckReport(t *testing.T) {
	db := testDB(t)

	if err := CheckReport(db, 2, 1); err != nil {
		t.Errorf("fresh report = %v, want nil", err)
	}
	if _, err := db.Exec(`INSERT INTO reports (post_id, user_id, reason, category) VALUES (1, 2, 'spammy', 'spam')`); err != nil {
		t.Fatalf("insert report: %v", err)
	}
	if err := CheckReport(db, 2, 1); err != ErrAlreadyReported {
		t.Errorf("duplicate report = %v, want ErrAlreadyReported", err)
	}
}

func TestCheckFollow(t *testing.T) {
	db := testDB(t)

	if err := CheckFollow(db, 1, 1); err != ErrSelfFollow {
		t.Errorf("self follow = %v, want ErrSelfFollow", err)
	}
	if err := CheckFollow(db, 1, 2); err != nil {
		t.Errorf("fresh follow = %v, want nil", err)
	}
	if _, err := db.Exec(`INSERT INTO followers (owner_id, followed_id) VALUES (1, 2)`); err != nil {
		t.Fatalf("insert follow: %v", err)
	}
	if err := CheckFollow(db, 1, 2); err != ErrAlreadyFollowing {
		t.Errorf("duplicate follow = %v, want ErrAlreadyFollowing", err)
	}
	// reverse direction is a distinct relationship
	if err := CheckFollow(db, 2, 1); err != nil {
		t.Errorf("reverse follow = %v, want nil", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := testDB(t)

	if _, err := db.Exec(`INSERT INTO likes (owner_id, post_id) VALUES (2, 1)`); err != nil {
		t.Fatalf("insert like: %v", err)
	}
	_, err := db.Exec(`INSERT INTO likes (owner_id, post_id) VALUES (2, 1)`)
	if err == nil {
		t.Fatal("duplicate insert should fail")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsUniqueViolation(sql.ErrNoRows) {
		t.Error("IsUniqueViolation(sql.ErrNoRows) = true, want false")
	}
}
