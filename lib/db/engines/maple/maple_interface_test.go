package maple

import (
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	dbtesting "github.com/MakeenTechnology/tiny-idb-helper/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}

func TestFactoryInstancesAreIndependent(t *testing.T) {
	factory := Factory(&DBOptions{PresizeKeys: 16})
	first, second := factory(), factory()
	defer first.Close()
	defer second.Close()

	if err := first.Put("shared", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := second.Get("shared"); ok {
		t.Errorf("Expected a fresh instance not to see keys of another instance")
	}
}

func TestInfoReportsValueSizes(t *testing.T) {
	database := NewMapleDB(nil)
	defer database.Close()

	_ = database.Put("a", make([]byte, 10))
	_ = database.Put("b", make([]byte, 10))
	_ = database.Put("b", make([]byte, 30)) // replaces the sample for b
	_ = database.Delete("a")

	info := database.GetInfo()
	if info.SizeBytes != 30 {
		t.Errorf("Expected 30 value bytes, got %d", info.SizeBytes)
	}

	meta := info.Metadata.(map[string]interface{})
	sizes := meta["value_sizes"].(map[string]interface{})
	if sizes["values"] != int64(1) {
		t.Errorf("Expected 1 tracked value, got %v", sizes["values"])
	}
	if sizes["avg_size"] != 30 {
		t.Errorf("Expected an average size of 30, got %v", sizes["avg_size"])
	}
}

func Benchmark(t *testing.B) {
	dbtesting.RunKVDBBenchmarks(t, "MapleDB", func() db.KVDB {
		return NewMapleDB(nil)
	})
}
