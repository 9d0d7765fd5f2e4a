// Package commands wires the splitledger CLI:
//
//	splitledger serve                 run the HTTP API
//	splitledger migrate               bring the database schema up to date
//	splitledger balances -f FILE      compute balances from a JSON snapshot
//
// Configuration comes from the environment (and a .env file); flags
// override it.
package commands
