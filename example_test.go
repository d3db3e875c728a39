package wayfinder_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// ExampleRouter_ChangeState shows a collaborator reacting to the inspector
// being opened and closed.
func ExampleRouter_ChangeState() {
	router, err := wayfinder.New(wayfinder.Config{
		BaseURL: "https://console.example.com/",
		Series:  []string{"trusty", "xenial"},
	})
	if err != nil {
		log.Fatal(err)
	}

	router.Register(dispatch.Entry{
		Key: "gui.inspector",
		Create: func(_ context.Context, state domain.Tree, next dispatch.Next) {
			fmt.Println("open inspector for", state.StringAt("gui.inspector.id"))
			next()
		},
		Cleanup: func(_ context.Context, _ domain.Tree, next dispatch.Next) {
			fmt.Println("close inspector")
			next()
		},
	})

	ctx := context.Background()
	_, _ = router.ChangeState(ctx, domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": "mysql"}}})
	fmt.Println(router.GeneratePath())

	_, _ = router.ChangeState(ctx, domain.Tree{"gui": nil})
	fmt.Println(router.GeneratePath())

	// Output:
	// open inspector for mysql
	// https://console.example.com/i/inspector/mysql
	// close inspector
	// https://console.example.com/
}

// ExampleRouter_GenerateState parses a URL without touching the history.
func ExampleRouter_GenerateState() {
	router, err := wayfinder.New(wayfinder.Config{
		BaseURL: "https://console.example.com/",
		Series:  []string{"trusty", "xenial"},
	})
	if err != nil {
		log.Fatal(err)
	}

	state, err := router.GenerateState(context.Background(), "https://console.example.com/u/hatch/staging/ghost/xenial", false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(state.StringAt("user"), state.StringAt("store"))

	// Output:
	// hatch/staging ghost/xenial
}
