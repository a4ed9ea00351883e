/*
Package filesystem wraps the os calls the local volume makes (stat, open, readdir)
with retry logic for stale file handles.

Removable cards exposed over NFS or FUSE bridges report ESTALE when the card is
re-seated or the export is refreshed. Those errors are transient, so they are
retried with exponential backoff; every other error is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Retry Behavior

Defaults: 3 retries, 50ms initial backoff doubling up to 500ms. Only ESTALE
triggers a retry.

# Metrics

The package does not import the metrics package. At startup the application
installs an Observer (metrics.NewFilesystemObserver) with SetObserver; with no
observer installed, recording is skipped. A VolumeResolver maps paths to a
short volume label used for metric labels.
*/
package filesystem
