// Command bizctl is the operator CLI: schema migrations, document numbering
// and stock register maintenance.
package main

func main() {
	Execute()
}
