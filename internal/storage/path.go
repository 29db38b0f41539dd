package storage

// BuildPath joins folder and item by plain concatenation. folder is expected
// to carry its trailing separator; nothing is validated or cleaned.
func BuildPath(folder, item string) string {
	return folder + item
}
