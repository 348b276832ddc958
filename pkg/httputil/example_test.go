package httputil_test

import (
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/cratepatch/pkg/httputil"
)

func ExampleCache_Namespace() {
	dir, _ := os.MkdirTemp("", "cratepatch-example")
	defer os.RemoveAll(dir)

	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	crates := cache.Namespace("crates:")
	_ = crates.Set("atomic-core", []string{"critical-section"})

	var deps []string
	ok, _ := crates.Get("atomic-core", &deps)
	fmt.Println(ok, deps)
	// Output:
	// true [critical-section]
}
