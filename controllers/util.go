package controllers

import (
	"encoding/json"
	"net/http"

	"google.golang.org/grpc/codes"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
)

type ResponseMessage struct {
	Status int
	Data   interface{}
}

func Message(message string) ResponseMessage {
	return MessageWithStatus(http.StatusOK, message)
}

func MessageWithStatus(status int, message string) ResponseMessage {
	return ResponseMessage{
		Status: status,
		Data:   map[string]interface{}{"message": message},
	}
}

func MessageWithData(status int, data interface{}) ResponseMessage {
	return ResponseMessage{
		Status: status,
		Data:   data,
	}
}

// ErrorMessage renders a canonical error with the HTTP status of its code.
func ErrorMessage(err *models.CanonicalError) ResponseMessage {
	return MessageWithData(httpStatus(err.Code()), map[string]interface{}{
		"error": err,
	})
}

func Respond(w http.ResponseWriter, data interface{}) {
	w.Header().Add("Content-Type", "application/json")

	var err error

	switch res := data.(type) {
	case ResponseMessage:
		w.WriteHeader(res.Status)
		err = json.NewEncoder(w).Encode(res.Data)
	case *models.CanonicalError:
		msg := ErrorMessage(res)
		w.WriteHeader(msg.Status)
		err = json.NewEncoder(w).Encode(msg.Data)
	default:
		w.WriteHeader(http.StatusOK)
		err = json.NewEncoder(w).Encode(data)
	}

	if err != nil {
		log.Errorf("Error encoding data for response: %v", err)
	}
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.Canceled:
		return 499
	case codes.InvalidArgument:
		return http.StatusUnprocessableEntity
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
