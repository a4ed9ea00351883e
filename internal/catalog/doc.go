// Package catalog builds browsable catalog pages from a storage volume.
//
// A [Reader] owns a [Navigator], a stack of folder paths whose top is the
// folder being browsed. Each call to [Reader.Read] lists that folder one
// level deep: subfolders become [FolderItem] values and every file with an
// extension is opened and handed to a preview extractor on a bounded worker
// pool, becoming a [BookItem]. Files whose preview cannot be extracted are
// logged and left out; the page is still returned. An absent volume yields
// an empty page rather than an error.
//
// A Reader is not safe for concurrent use. Callers serving several clients
// keep one Reader per client and serialize calls on it.
package catalog
