package registry

// builtins returns the seed command table for a fresh session. Descriptions
// surface in completion output, so they stay short.
func builtins() []*Command {
	return []*Command{
		{
			Name:        "ls",
			Description: "List the filenames, sizes, and modification times of items in a directory.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "pattern", Shape: "glob", Optional: true, Description: "The glob pattern to use"},
				},
				Flags: []Flag{
					{Long: "all", Short: "a", Description: "Show hidden files"},
					{Long: "long", Short: "l", Description: "Get all available columns for each entry"},
					{Long: "short-names", Short: "s", Description: "Only print the file names, and not the path"},
					{Long: "full-paths", Short: "f", Description: "Display paths as absolute paths"},
					{Long: "du", Short: "d", Description: "Display the apparent directory size in place of the directory metadata size"},
					{Long: "directory", Short: "D", Description: "List the specified directory itself instead of its contents"},
					{Long: "mime-type", Short: "m", Description: "Show mime-type in type column instead of 'file'"},
					{Long: "threads", Short: "t", Description: "Use multiple threads to list contents"},
				},
			},
		},
		{
			Name:        "cd",
			Description: "Change directory.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "path", Shape: "directory", Optional: true, Description: "The path to change to"},
				},
			},
		},
		{
			Name:        "cp",
			Description: "Copy files.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "source", Shape: "glob", Description: "The place to copy from"},
					{Name: "destination", Shape: "path", Description: "The place to copy to"},
				},
				Flags: []Flag{
					{Long: "recursive", Short: "r", Description: "Copy directories recursively"},
					{Long: "verbose", Short: "v", Description: "Show successful copies"},
					{Long: "force", Short: "f", Description: "Overwrite without prompting"},
				},
			},
		},
		{
			Name:        "mv",
			Description: "Move files or directories.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "source", Shape: "glob", Description: "The location to move files or directories from"},
					{Name: "destination", Shape: "path", Description: "The location to move files or directories to"},
				},
				Flags: []Flag{
					{Long: "verbose", Short: "v", Description: "Show successful moves"},
					{Long: "force", Short: "f", Description: "Overwrite without prompting"},
				},
			},
		},
		{
			Name:        "rm",
			Description: "Remove files and directories.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "paths", Shape: "glob", Description: "The file paths to remove"},
				Flags: []Flag{
					{Long: "trash", Short: "t", Description: "Move to the platform's trash instead of deleting"},
					{Long: "permanent", Short: "p", Description: "Delete permanently, bypassing the trash"},
					{Long: "recursive", Short: "r", Description: "Delete subdirectories recursively"},
					{Long: "force", Short: "f", Description: "Suppress errors when no file matches"},
					{Long: "verbose", Short: "v", Description: "Print names of each deleted file"},
					{Long: "interactive", Short: "i", Description: "Ask before each removal"},
				},
			},
		},
		{
			Name:        "open",
			Description: "Load a file into a cell, converting to table if possible.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "filename", Shape: "glob", Description: "The file to open"},
				},
				Flags: []Flag{
					{Long: "raw", Short: "r", Description: "Open the file as raw binary or string"},
				},
			},
		},
		{
			Name:        "touch",
			Description: "Create files or update their timestamps.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "files", Shape: "path", Description: "The files to create or update"},
			},
		},
		{
			Name:        "mkdir",
			Description: "Create directories, building intermediate paths as needed.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "rest", Shape: "directory", Description: "The names of the paths to create"},
				Flags: []Flag{
					{Long: "verbose", Short: "v", Description: "Print the path of each created directory"},
				},
			},
		},
		{
			Name:        "which",
			Description: "Finds a program file, alias or custom command.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "application", Shape: "command", Description: "The application to find"},
				},
				Rest: &PositionalArg{Name: "rest", Shape: "command", Description: "Additional applications to find"},
				Flags: []Flag{
					{Long: "all", Short: "a", Description: "List all executables"},
				},
			},
		},
		{
			Name:        "use",
			Description: "Use definitions from a module, making them available in your shell.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "module", Shape: "module", Description: "Module or module file"},
				},
				Rest: &PositionalArg{Name: "members", Shape: "any", Description: "Which members of the module to import"},
			},
		},
		{
			Name:        "overlay",
			Description: "Commands for manipulating overlays.",
		},
		{
			Name:        "overlay use",
			Description: "Use definitions from a module as an overlay.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "name", Shape: "module", Description: "Module name to use overlay for"},
					{Name: "as", Shape: "string", Optional: true, Description: "As keyword followed by a new name"},
				},
				Flags: []Flag{
					{Long: "prefix", Short: "p", Description: "Prepend module name to the imported commands and aliases"},
					{Long: "reload", Short: "r", Description: "If the overlay already exists, reload its definitions and environment"},
				},
			},
		},
		{
			Name:        "overlay hide",
			Description: "Hide an active overlay.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "name", Shape: "string", Optional: true, Description: "Overlay to hide"},
				},
				Flags: []Flag{
					{Long: "keep-custom", Short: "k", Description: "Keep all newly added commands and aliases in the next activated overlay"},
				},
			},
		},
		{
			Name:        "overlay new",
			Description: "Create an empty overlay.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "name", Shape: "string", Description: "Name of the overlay"},
				},
			},
		},
		{
			Name:        "overlay list",
			Description: "List all active overlays.",
		},
		{
			Name:        "source-env",
			Description: "Source the environment from a source file into the current environment.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "filename", Shape: "module", Description: "The filepath to the script file to source the environment from"},
				},
			},
		},
		{
			Name:        "each",
			Description: "Run a closure on each row of the input list, creating a new list with the results.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "closure", Shape: "closure", Description: "The closure to run"},
				},
				Flags: []Flag{
					{Long: "keep-empty", Short: "k", Description: "Keep empty result cells"},
				},
			},
		},
		{
			Name:        "where",
			Description: "Filter values based on a row condition.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "row_condition", Shape: "any", Description: "Filter condition"},
				},
			},
		},
		{
			Name:        "lines",
			Description: "Converts input to lines.",
		},
		{
			Name:        "length",
			Description: "Count the number of items in an input list, rows in a table, or bytes in binary data.",
		},
		{
			Name:        "first",
			Description: "Return only the first several rows of the input.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "rows", Shape: "int", Optional: true, Description: "Starting from the front, the number of rows to return"},
				},
			},
		},
		{
			Name:        "last",
			Description: "Return only the last several rows of the input.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "rows", Shape: "int", Optional: true, Description: "Starting from the back, the number of rows to return"},
				},
			},
		},
		{
			Name:        "get",
			Description: "Extract data using a cell path.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "cell_path", Shape: "any", Description: "The cell path to the data"},
				},
			},
		},
		{
			Name:        "sort",
			Description: "Sort in increasing order.",
			Sig: Signature{
				Flags: []Flag{
					{Long: "reverse", Short: "r", Description: "Sort in reverse order"},
					{Long: "ignore-case", Short: "i", Description: "Sort string values case-insensitively"},
				},
			},
		},
		{
			Name:        "echo",
			Description: "Returns its arguments, ignoring the piped-in value.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "rest", Shape: "any", Description: "The values to echo"},
			},
		},
		{
			Name:        "print",
			Description: "Print values to stdout.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "rest", Shape: "any", Description: "The values to print"},
				Flags: []Flag{
					{Long: "no-newline", Short: "n", Description: "Print without inserting a newline"},
					{Long: "stderr", Short: "e", Description: "Print to stderr instead of stdout"},
				},
			},
		},
		{
			Name:        "help",
			Description: "Display help information about different parts of nush.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "rest", Shape: "string", Description: "The command or topic to get help on"},
			},
		},
		{
			Name:        "exit",
			Description: "Exit the shell.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "exit_code", Shape: "int", Optional: true, Description: "Exit code to return immediately with"},
				},
			},
		},

		// Declaration keywords double as commands so they complete at head
		// position.
		{
			Name:        "def",
			Description: "Define a custom command.",
			Sig: Signature{
				Flags: []Flag{
					{Long: "env", Description: "Keep the environment defined inside the command"},
					{Long: "wrapped", Description: "Treat unknown flags and arguments as strings"},
				},
			},
		},
		{Name: "extern", Description: "Define a signature for an external command."},
		{Name: "alias", Description: "Alias a command to an expansion."},
		{Name: "let", Description: "Create a variable and give it a value."},
		{Name: "const", Description: "Create a parse-time constant."},
		{Name: "mut", Description: "Create a mutable variable and give it a value."},
		{Name: "export", Description: "Export definitions or environment variables from a module."},
		{Name: "export def", Description: "Define a custom command and export it from a module."},
		{Name: "export extern", Description: "Define an extern and export it from a module."},
		{Name: "export alias", Description: "Alias a command and export it from a module."},
		{Name: "export use", Description: "Use definitions from a module and export them."},

		// The attribute namespace: @NAME resolves against "attr NAME".
		{
			Name:        "attr category",
			Description: "Attribute for adding a category to custom commands.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "category", Shape: "string", Description: "The category of the command"},
				},
			},
		},
		{
			Name:        "attr example",
			Description: "Attribute for adding examples to custom commands.",
			Sig: Signature{
				Positionals: []PositionalArg{
					{Name: "description", Shape: "string", Description: "Description of the example"},
					{Name: "example", Shape: "any", Description: "Example code snippet"},
				},
				Flags: []Flag{
					{Long: "result", Shape: "any", Description: "Expected output of the example"},
				},
			},
		},
		{
			Name:        "attr search-terms",
			Description: "Attribute for adding search terms to custom commands.",
			Sig: Signature{
				Rest: &PositionalArg{Name: "terms", Shape: "string", Description: "Search terms for the command"},
			},
		},
	}
}
