// Package registry keeps the set of manifest schemas available to seqval.
//
// Schemas come from two places: the built-in documents embedded in the
// binary and an optional directory of "<type>-<version>.{json,yaml,yml}"
// files. A directory schema replaces the built-in schema with the same key.
//
// # Loading
//
//	mgr, err := registry.NewManager(&cfg.Schemas, logger)
//	if err != nil {
//		return err
//	}
//	if err := mgr.Load(); err != nil {
//		return err
//	}
//	sch, err := mgr.Lookup("IMPORT", "1.0")
//
// Every file is checked before the new set is installed. If any file fails,
// the whole load fails and, for a reload, the previous set stays active.
//
// # Hot Reload
//
// Watch reloads the directory when files change (fsnotify, debounced) and,
// when a cron schedule is configured, on that schedule as well:
//
//	go func() {
//		if err := mgr.Watch(ctx); err != nil {
//			logger.Error("schema watch failed", "error", err)
//		}
//	}()
//
// The registry swaps the complete set under a lock, so a validation that
// looked up a schema keeps using it even if a reload replaces it meanwhile.
package registry
