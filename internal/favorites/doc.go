// Package favorites keeps the "liked" state of a chalet consistent between a mounted view,
// the local persisted favorite set, the backend, and every other open view.
//
// Views mutate optimistically through a [Controller]: the UI flips immediately, the local
// [Cache] is rewritten, a [Event] is published to the process-wide [Notifier], and the backend
// is asked to confirm. A rejected or failed confirmation rolls back the view only; the cache and
// the already-published event are left as they are.
//
// A [Store] bundles the cache and notifier and is constructed once per process. [LocalStore.Follow]
// turns a storage [Signal] (a file watch or a Redis channel) into events so that writes made by
// other processes reach local views.
package favorites
