// Package storage provides persistent storage for the prayer reminder bot.
// It uses BadgerDB as the embedded database and stores values as JSON.
package storage
