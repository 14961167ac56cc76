// Package card declares the persisted types of card design packages:
// games, stylesheets, sets and the objects they own.
//
// Every type declares its schema once at init. NewRegistry collects them
// for the persist Reader and Writer.
package card
