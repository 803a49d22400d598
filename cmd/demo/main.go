// Command demo is a non-interactive smoke program: it constructs each
// of the three backends, runs a handful of Set/Get/Find/Ttl operations
// against each, and prints the results. It is not the REPL front-end
// described by the store contract - there is no command parser and no
// interactive loop, just a fixed sequence exercising every backend the
// same way.
package main

import (
	"fmt"

	"github.com/keyplex/keyplex/lib/config"
	"github.com/keyplex/keyplex/lib/record"
	"github.com/keyplex/keyplex/lib/store"
	"github.com/keyplex/keyplex/lib/store/bplustree"
	"github.com/keyplex/keyplex/lib/store/hashstore"
	"github.com/keyplex/keyplex/lib/store/rbtree"
)

func main() {
	cfg := config.Load()

	backends := map[string]store.Store{
		"hashstore": hashstore.New(cfg),
		"rbtree":    rbtree.New(cfg),
		"bplustree": bplustree.New(cfg),
	}

	for name, s := range backends {
		fmt.Printf("=== %s ===\n", name)
		run(s)
		closeIfCloser(s)
	}
}

func run(s store.Store) {
	s.Set("alice", record.Record{LastName: "Krug", FirstName: "Alice", Birthday: "1990", City: "Berlin", Coins: "12"}, -1)
	s.Set("bob", record.Record{LastName: "Krug", FirstName: "Bob", Birthday: "1985", City: "Hamburg", Coins: "7"}, 30)
	s.Set("carol", record.Record{LastName: "Nagel", FirstName: "Carol", Birthday: "2001", City: "Berlin", Coins: "3"}, -1)

	fmt.Printf("keys: %v\n", s.Keys())
	fmt.Printf("get alice: %+v\n", s.Get("alice"))
	fmt.Printf("ttl bob: %ds\n", s.Ttl("bob"))
	fmt.Printf("find LastName=Krug: %v\n", s.Find(record.Record{LastName: "Krug", FirstName: "-", Birthday: "-", City: "-", Coins: "-"}))

	s.Update("carol", record.Record{LastName: "-", FirstName: "-", Birthday: "-", City: "-", Coins: "30"})
	fmt.Printf("carol after update: %+v\n", s.Get("carol"))

	s.Rename("bob", "bobby")
	fmt.Printf("exists bob/bobby: %v/%v\n", s.Exists("bob"), s.Exists("bobby"))

	s.Delete("alice")
	fmt.Printf("keys after delete: %v\n", s.Keys())
}

func closeIfCloser(s store.Store) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}
