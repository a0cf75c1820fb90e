// Package expr provides CEL (Common Expression Language) functionality for
// evaluating expressions against directory entries.
//
// Expressions have access to variables describing one entry:
//   - `name` (string): The file name, including any extension
//   - `ext` (string): The extension without the leading dot, or ""
//   - `path` (string): The full path of the entry
//   - `dir` (string): The directory containing the entry
//   - `size` (int): The size in bytes
//   - `isDir`, `isFile`, `isSymlink` (bool): The entry type
//   - `mtime` (timestamp): The modification time
//
// And to these functions:
//   - `pathBase(string)`, `pathDir(string)`: Path segments
//   - `pathExt(string)`: The extension of a path, following the rules of `ext`
//   - `glob(pattern, string)`: Shell pattern matching
//   - `yamlPath(file, query)`: A value read from a YAML file, or null
package expr
