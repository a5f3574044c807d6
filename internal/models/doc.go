// Package models defines domain entities and persistence interfaces for the chalet marketplace client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): canonical shapes produced by the backend adapter
//   - [Chalet] : a rental property, normalized from heterogeneous backend payloads
//   - [User] : the authenticated account as reported by the backend
//   - [Inquiry] : a contact form submission
//   - [DashboardStats] : admin dashboard counters
//   - [Gallery] : a wrap-around cursor over a chalet's images
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Session] : a stored backend session (cookie token, role, expiry)
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
