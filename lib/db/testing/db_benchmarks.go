package testing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory db.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory())
		})

		b.Run("PutLargeValue", func(b *testing.B) {
			benchmarkPutLargeValue(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory())
		})

		b.Run("Keys", func(b *testing.B) {
			benchmarkKeys(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkPut(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	value := []byte(`{"benchmark":true}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Put(fmt.Sprintf("key-%d", i%1000), value); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkPutLargeValue(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut)

	value := make([]byte, 64*1024)
	rand.Read(value)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := database.Put("large", value); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureGet)

	for i := 0; i < 1000; i++ {
		if err := database.Put(fmt.Sprintf("key-%d", i), []byte("value")); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			if _, _, err := database.Get(fmt.Sprintf("key-%d", counter%1000)); err != nil {
				b.Error(err)
			}
			counter++
		}
	})
}

func benchmarkDelete(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureDelete)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		key := fmt.Sprintf("key-%d", i)
		_ = database.Put(key, []byte("value"))
		b.StartTimer()
		if err := database.Delete(key); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkKeys(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeaturePut|db.FeatureKeys)

	for i := 0; i < 1000; i++ {
		_ = database.Put(fmt.Sprintf("key-%d", i), []byte("value"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := database.Keys(); err != nil {
			b.Fatal(err)
		}
	}
}
