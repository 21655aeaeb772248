package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
)

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
// Every subtest gets a fresh, empty handle from factory.
func RunKVDBTests(t *testing.T, name string, factory db.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Enumerate", func(t *testing.T) {
			testEnumerate(t, factory())
		})

		t.Run("Destroy", func(t *testing.T) {
			testDestroy(t, factory())
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

func mustPut(t testing.TB, database db.KVDB, key string, value []byte) {
	t.Helper()
	if err := database.Put(key, value); err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
}

func mustGet(t testing.TB, database db.KVDB, key string) ([]byte, bool) {
	t.Helper()
	value, ok, err := database.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return value, ok
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustPut(t, database, testKey, testValue1)

	result, exists := mustGet(t, database, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustPut(t, database, testKey, testValue2)

	result, exists = mustGet(t, database, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = mustGet(t, database, "nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// the returned slice must be a copy
	retrievedValue, _ := mustGet(t, database, testKey)
	retrievedValue[0] = 'X'
	result, _ = mustGet(t, database, testKey)
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Modifying a returned value changed the stored value: %s", result)
	}

	// the stored slice must be a copy as well
	input := []byte("mutable")
	mustPut(t, database, "mutable-key", input)
	input[0] = 'X'
	result, _ = mustGet(t, database, "mutable-key")
	if !bytes.Equal(result, []byte("mutable")) {
		t.Errorf("Modifying the input after Put changed the stored value: %s", result)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureGet|db.FeatureDelete)

	mustPut(t, database, "delete-key", []byte("value"))

	if err := database.Delete("delete-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, exists := mustGet(t, database, "delete-key"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting a missing key is not an error
	if err := database.Delete("never-set"); err != nil {
		t.Errorf("Expected no error deleting a missing key, got %v", err)
	}
}

func testClear(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureClear|db.FeatureCount)

	for i := 0; i < 10; i++ {
		mustPut(t, database, fmt.Sprintf("clear-%d", i), []byte("v"))
	}

	if err := database.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	n, err := database.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 keys after Clear, got %d", n)
	}

	// the handle stays usable
	mustPut(t, database, "after-clear", []byte("v"))
	if _, exists := mustGet(t, database, "after-clear"); !exists {
		t.Errorf("Expected handle to accept writes after Clear")
	}
}

func testEnumerate(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeaturePut|db.FeatureKeys|db.FeatureGetAll|db.FeatureCount)

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		mustPut(t, database, k, []byte(v))
	}

	keys, err := database.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if fmt.Sprint(keys) != "[a b c]" {
		t.Errorf("Expected keys [a b c], got %v", keys)
	}

	values, err := database.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	got := make([]string, 0, len(values))
	for _, v := range values {
		got = append(got, string(v))
	}
	sort.Strings(got)
	if fmt.Sprint(got) != "[1 2 3]" {
		t.Errorf("Expected values [1 2 3], got %v", got)
	}

	n, err := database.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != len(want) {
		t.Errorf("Expected %d keys, got %d", len(want), n)
	}
}

func testDestroy(t *testing.T, database db.KVDB) {
	requireFeature(t, database, db.FeaturePut|db.FeatureDestroy)

	mustPut(t, database, "k", []byte("v"))

	if err := database.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	if _, _, err := database.Get("k"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed after Destroy, got %v", err)
	}
}

func testClose(t *testing.T, database db.KVDB) {
	requireFeature(t, database, db.FeaturePut)

	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := database.Put("k", []byte("v")); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed on Put after Close, got %v", err)
	}
	if err := database.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got %v", err)
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	mustPut(t, database, "info-key", []byte("0123456789"))

	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("Expected DbType to be set")
	}
	if info.Keys != 1 {
		t.Errorf("Expected 1 key in info, got %d", info.Keys)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size, got %d", info.SizeBytes)
	}
	if len(info.SupportedFeatures) == 0 {
		t.Errorf("Expected at least one supported feature")
	}
}

func testConcurrent(t *testing.T, database db.KVDB) {
	defer database.Close()

	const (
		workers = 8
		perWork = 50
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWork; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				if err := database.Put(key, []byte(key)); err != nil {
					errs <- err
					return
				}
				value, ok, err := database.Get(key)
				if err != nil || !ok || string(value) != key {
					errs <- fmt.Errorf("read back %q: ok=%v value=%q err=%v", key, ok, value, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	n, err := database.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != workers*perWork {
		t.Errorf("Expected %d keys, got %d", workers*perWork, n)
	}
}
