// Package session provides in-memory game session management.
//
// Sessions use 4-character hex IDs for easy reference, generated with
// cryptographic randomness. Lookup is case-insensitive. The manager is safe
// for concurrent use; sessions that go unused can be swept with
// CleanupExpiredSessions.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", eng)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
