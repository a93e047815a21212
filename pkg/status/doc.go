/*
Package status manages target files and tracks what a run did to them.

	            +-------------+
	            |   Manager   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|   Files   |           |  Status  |
	| read/write|           | progress |
	+-----------+           +----------+

🎯 Purpose:
- Reads target files and writes them back atomically (temp file + rename)
- Keeps optional .bak copies and restores from them
- Tracks per-file status (patched, pending, unchanged, restored, failed)
- Reports progress through a FileFormatter

🔄 Flow:
1. Manager.File binds a path to the buffer Source/Sink interfaces
2. The engine loads the text, applies rules, then saves through the File
3. The operation records the outcome with TrackFile
4. Progress is advanced once per file, safe across goroutines

⚡ Guarantees:
- A failed write never leaves a partial file behind
- A backup is only taken when a write actually happens
- The existing file mode survives a rewrite

🔍 Example:

	mgr := status.New(dir, zerolog.Ctx(ctx))
	f := mgr.File("lib/editor.dart", true)

	result, err := engine.New(engine.Options{}).Patch(ctx, f, f, rules, false)
	if err != nil {
		mgr.TrackFile(ctx, f.Path, status.FileInfo{Status: status.StatusFailed, Error: err})
	}
*/
package status
