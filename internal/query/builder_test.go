package query_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stockhubapp/stockhub/internal/query"
)

func TestSelectSQL(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *query.Builder
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "bare table",
			build: func() *query.Builder {
				return query.New("items")
			},
			wantSQL:  "SELECT items.* FROM items",
			wantArgs: nil,
		},
		{
			name: "tenant scope plus equality",
			build: func() *query.Builder {
				return query.New("items").
					Where("items.organization_id", "org-1").
					Where("items.id", 7)
			},
			wantSQL:  "SELECT items.* FROM items WHERE items.organization_id = $1 AND items.id = $2",
			wantArgs: []any{"org-1", 7},
		},
		{
			name: "joins select and multi-key order",
			build: func() *query.Builder {
				return query.New("kits").
					Select("kits.*", "models.name AS model_name").
					Join("kit_items", "kit_items.kit_id = kits.id").
					LeftJoin("models", "models.id = kit_items.model_id").
					OrderBy("models.name", true).
					OrderBy("kits.id", false)
			},
			wantSQL: "SELECT kits.*, models.name AS model_name FROM kits " +
				"JOIN kit_items ON kit_items.kit_id = kits.id " +
				"LEFT JOIN models ON models.id = kit_items.model_id " +
				"ORDER BY models.name ASC, kits.id DESC",
			wantArgs: nil,
		},
		{
			name: "raw condition placeholders renumbered after scope",
			build: func() *query.Builder {
				return query.New("items").
					Where("items.organization_id", "org-1").
					WhereRaw("items.name ILIKE ? OR items.serial ILIKE ?", "%cam%", "%cam%")
			},
			wantSQL: "SELECT items.* FROM items WHERE items.organization_id = $1 " +
				"AND (items.name ILIKE $2 OR items.serial ILIKE $3)",
			wantArgs: []any{"org-1", "%cam%", "%cam%"},
		},
		{
			name: "limit and offset come last",
			build: func() *query.Builder {
				return query.New("items").
					Where("items.organization_id", "org-1").
					OrderBy("items.name", true).
					Limit(2).
					Offset(4)
			},
			wantSQL: "SELECT items.* FROM items WHERE items.organization_id = $1 " +
				"ORDER BY items.name ASC LIMIT $2 OFFSET $3",
			wantArgs: []any{"org-1", 2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build().SelectSQL()

			if sql != tt.wantSQL {
				t.Fatalf("sql mismatch:\n got %q\nwant %q", sql, tt.wantSQL)
			}

			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args mismatch: got %v want %v", args, tt.wantArgs)
			}

			for i := range args {
				if !reflect.DeepEqual(args[i], tt.wantArgs[i]) {
					t.Fatalf("arg %d: got %v want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestInsertSQL(t *testing.T) {
	sql, args := query.New("items").InsertSQL(map[string]any{
		"name":            "Tripod",
		"organization_id": "org-1",
	}, "id")

	// keys render in sorted order so statements are deterministic
	want := `INSERT INTO items ("name", "organization_id") VALUES ($1, $2) RETURNING "id"`

	if sql != want {
		t.Fatalf("sql mismatch:\n got %q\nwant %q", sql, want)
	}

	if args[0] != "Tripod" || args[1] != "org-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertSQLQuotesHostileKeys(t *testing.T) {
	sql, _ := query.New("items").InsertSQL(map[string]any{
		`name"; DROP TABLE items; --`: "x",
	}, "id")

	if want := `"name""; DROP TABLE items; --"`; !strings.Contains(sql, want) {
		t.Fatalf("hostile key was not quoted: %q", sql)
	}
}

func TestUpdateSQL(t *testing.T) {
	sql, args := query.New("items").
		Where("items.id", 3).
		Where("items.organization_id", "org-1").
		UpdateSQL(map[string]any{"name": "Slider"})

	want := `UPDATE items SET "name" = $1 WHERE items.id = $2 AND items.organization_id = $3`

	if sql != want {
		t.Fatalf("sql mismatch:\n got %q\nwant %q", sql, want)
	}

	if args[0] != "Slider" || args[1] != 3 || args[2] != "org-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestDeleteSQL(t *testing.T) {
	sql, args := query.New("items").
		Where("items.id", 3).
		DeleteSQL()

	if want := "DELETE FROM items WHERE items.id = $1"; sql != want {
		t.Fatalf("sql mismatch:\n got %q\nwant %q", sql, want)
	}

	if len(args) != 1 || args[0] != 3 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestModifyNilIsNoop(t *testing.T) {
	b := query.New("items")

	if got := b.Modify(nil); got != b {
		t.Fatal("nil modify should return the same builder")
	}
}
