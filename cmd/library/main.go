// Command library runs the library loan ledger: the REST API, schema migration, counter repair, and seeding.
package main

func main() {
	Execute()
}
