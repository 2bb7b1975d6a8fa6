package util

func MergeMaps(a map[string]string, b map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		result[k] = v
	}
	return result
}

func DeepCopy(a map[string]string) map[string]string {
	if a == nil {
		return nil
	}

	result := make(map[string]string)
	for k, v := range a {
		result[k] = v
	}
	return result
}
