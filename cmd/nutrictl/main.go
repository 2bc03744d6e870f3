// nutrictl is the operations CLI: schema migrations, user provisioning and
// offline target calculation.
// Usage: go run ./cmd/nutrictl <command> (from the repo root)
package main

func main() {
	Execute()
}
