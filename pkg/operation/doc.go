/*
Package operation runs patchrc commands across target files.

	+-------------+
	|    Plan     |
	| targets ->  |
	|   jobs      |
	+------+------+
	       |
	+------+------+      +-----------+
	|   Runner    +----->+  Engine   |
	| sync/async  |      | per file  |
	+------+------+      +-----------+
	       |
	+------+------+
	|   Status    |
	| State, Log  |
	+-------------+

🎯 Purpose:
- Expands config targets (doublestar globs, ignore patterns) into jobs
- Runs each job's rule sets through the engine against one file
- Records patched files in the lock file so they can be restored
- Reports per-file and per-rule outcomes to the console

🔄 Operations:
- patch: apply rule sets, writing atomically unless DryRun is set
- check: dry run plus config and file drift against the lock file;
  returns ErrChangesPending when something would change
- restore: rebuild the pre-patch text from the lock file's reverse delta,
  falling back to the .bak copy for files edited since

⚡ Failure model:
- A rule failure aborts that file only; the file is left untouched
- Other files still run; Execute returns ErrFilesFailed at the end
- Context cancellation stops everything

🔍 Example:

	op, err := operation.NewPatchOperation(ctx, operation.Options{
		Config:   cfg,
		RuleSets: []string{"migrate-to-webview"},
		Files:    []string{"lib/ui/organisms/editors/generic_block_editor.dart"},
		Diff:     true,
	})
	if err != nil {
		return err
	}
	return op.Execute(ctx)
*/
package operation
