package pdf

// detectEncryption reports the /Filter name of the trailer's /Encrypt
// dictionary, for a more informative EncryptedError.
// Decryption itself is out of scope; the document layer rejects any
// encrypted file before any object content is read.
func detectEncryption(trailer Dictionary, doc *Document) string {
	encryptRef := trailer.Get("Encrypt")
	if encryptRef == nil {
		return ""
	}
	obj, err := doc.ResolveObject(encryptRef)
	if err != nil {
		return "unknown"
	}
	dict, ok := obj.(Dictionary)
	if !ok {
		return "unknown"
	}
	if filter, ok := dict.GetName("Filter"); ok {
		return string(filter)
	}
	return "unknown"
}
