package common

import "github.com/wI2L/jettison"

func MarshalToString(obj interface{}) (string, error) {
	json, err := jettison.MarshalOpts(obj, jettison.NoHTMLEscaping())
	if err != nil {
		return "", err
	}
	return string(json), nil
}
