package integrations_test

import (
	"fmt"

	"github.com/matzehuels/cratepatch/pkg/integrations"
)

func Example_errors() {
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	// Output:
	// ErrNotFound: not found
	// ErrNetwork: network error
}
