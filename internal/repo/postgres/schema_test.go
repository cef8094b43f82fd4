package postgres

import (
	"strings"
	"testing"

	"github.com/gigboard/backend/internal/domain/enums"
)

func TestColumnsFollowDBTags(t *testing.T) {
	columns := servicesTable.columns
	if columns[0] != "id" || columns[len(columns)-1] != "updated_at" {
		t.Fatalf("columns must keep field order: %v", columns)
	}
	for _, column := range columns {
		if column == "-" || column == "" || column == "ImageURL" {
			t.Fatalf("untagged or skipped field leaked into column list: %v", columns)
		}
	}
	if !strings.Contains(servicesTable.selectList(), "image_key") {
		t.Fatalf("image_key missing from select list: %s", servicesTable.selectList())
	}
}

func TestTargetKeyByKind(t *testing.T) {
	if key, err := targetKey(enums.EntityKindUser, " 3f1c "); err != nil || key != "3f1c" {
		t.Fatalf("user ids are kept as text: key=%v err=%v", key, err)
	}
	if key, err := targetKey(enums.EntityKindJob, "42"); err != nil || key != int64(42) {
		t.Fatalf("job ids are parsed as int64: key=%v err=%v", key, err)
	}
	for _, raw := range []string{"", "abc", "-1", "0"} {
		if _, err := targetKey(enums.EntityKindService, raw); err != ErrNotFound {
			t.Fatalf("targetKey(%q): expected ErrNotFound, got %v", raw, err)
		}
	}
}
