// Package watch keeps a space in sync with knowledge-base files on disk.
//
// Watcher reports changed .metta files in debounced batches; Reloader
// replaces the atoms a file contributed to a space with the file's new
// content:
//
//	w, _ := watch.New(&watch.Config{Paths: []string{"kb"}}, logger)
//	rl := watch.NewReloader(r.Space(), r, logger)
//	files, _ := w.Files()
//	_ = rl.Load(ctx, files)
//	go w.Watch(ctx, rl.Reload)
package watch
