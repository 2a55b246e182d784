package cff

func Fuzz(data []byte) int {
	f, err := NewBytes(data, &Options{})
	if err != nil {
		return 0
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return 0
	}
	return 1
}
