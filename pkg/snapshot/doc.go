// Package snapshot saves a space into a storage.Store on a cron schedule
// and keeps the number of retained snapshots bounded.
package snapshot
