package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/heysubinoy/localkv/api/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// usage maps each command to its argument synopsis.
var usage = []struct{ cmd, args string }{
	{"get", "<key>"},
	{"set", "<key> <value>"},
	{"update", "<key> <value>"},
	{"delete", "<key>"},
	{"has", "<key>"},
	{"clear", ""},
	{"setex", "<key> <value> <ttl>"},
	{"getex", "<key>"},
	{"clean", ""},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	addr := os.Getenv("LOCALKV_GRPC_ADDR")
	if addr == "" {
		addr = "127.0.0.1:9090"
	}
	// If the address starts with ":", it's missing a host - use localhost
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	conn, err := grpc.NewClient("passthrough:///"+addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	client := rpc.NewStoreClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	command, args := os.Args[1], os.Args[2:]
	if !enoughArgs(command, args) {
		printUsage()
		os.Exit(1)
	}

	switch command {
	case "get":
		printOutcome(client.Read(ctx, args[0]))
	case "set":
		if err := client.Write(ctx, args[0], parseValue(args[1])); err != nil {
			log.Fatalf("Set failed: %v", err)
		}
		fmt.Printf("Set '%s'\n", args[0])
	case "update":
		printOutcome(client.Update(ctx, args[0], parseValue(args[1])))
	case "delete":
		printOutcome(client.Delete(ctx, args[0]))
	case "has":
		found, err := client.Has(ctx, args[0])
		if err != nil {
			log.Fatalf("Has failed: %v", err)
		}
		fmt.Println(found)
		if !found {
			os.Exit(1)
		}
	case "clear":
		printOutcome(client.Clear(ctx))
	case "setex":
		ttl, err := time.ParseDuration(args[2])
		if err != nil {
			log.Fatalf("Invalid ttl %q: %v", args[2], err)
		}
		if err := client.WriteWithExpiry(ctx, args[0], parseValue(args[1]), ttl); err != nil {
			log.Fatalf("Setex failed: %v", err)
		}
		fmt.Printf("Set '%s' for %s\n", args[0], ttl)
	case "getex":
		printOutcome(client.ReadWithExpiry(ctx, args[0]))
	case "clean":
		if err := client.CleanExpired(ctx); err != nil {
			log.Fatalf("Clean failed: %v", err)
		}
		fmt.Println("Expired entries removed")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func enoughArgs(command string, args []string) bool {
	for _, u := range usage {
		if u.cmd == command {
			return len(args) >= len(strings.Fields(u.args))
		}
	}
	return true
}

// parseValue reads arg as JSON, falling back to the raw string.
func parseValue(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}
	return v
}

func printOutcome(out rpc.Outcome, err error) {
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	if !out.OK() {
		fmt.Fprintf(os.Stderr, "error: %v\n", out.Value)
		os.Exit(1)
	}
	if s, ok := out.Value.(string); ok {
		fmt.Println(s)
		return
	}
	b, err := json.Marshal(out.Value)
	if err != nil {
		log.Fatalf("Encode value: %v", err)
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Println("Usage:")
	for _, u := range usage {
		fmt.Printf("  localkv-cli %s %s\n", u.cmd, u.args)
	}
	fmt.Println("")
	fmt.Println("Environment variables:")
	fmt.Println("  LOCALKV_GRPC_ADDR - server gRPC address (default: 127.0.0.1:9090)")
}
