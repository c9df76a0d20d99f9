// Package messaging maps user request topics onto the user store and sends
// the results back over the message bus.
package messaging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"wfmuser/internal/models"
	"wfmuser/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/streadway/amqp"
)

// Request topics understood by the dispatcher.
const (
	TopicList           = "wfm:user:list"
	TopicRead           = "wfm:user:read"
	TopicReadByUsername = "wfm:user:username:read"
	TopicAuth           = "wfm:user:auth"
	TopicPassword       = "wfm:user:password"
	TopicCreate         = "wfm:user:create"
	TopicUpdate         = "wfm:user:update"
	TopicDelete         = "wfm:user:delete"
)

// ErrUnknownTopic is replied for topics with no matching store operation.
var ErrUnknownTopic = errors.New("unknown topic")

// ErrBadRequest wraps request bodies that cannot be decoded or validated.
var ErrBadRequest = errors.New("bad request")

// Publisher sends a reply for a request.
type Publisher interface {
	Reply(replyTo, correlationID, msgType string, body []byte) error
}

// AuthRequest is the body of TopicAuth.
type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// PasswordRequest is the body of TopicPassword.
type PasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateRequest is the body of TopicUpdate: the target id plus the fields to
// merge.
type UpdateRequest struct {
	ID string `json:"id" validate:"required"`
	models.UserPatch
}

// Dispatcher routes requests to a services.Directory.
type Dispatcher struct {
	users     services.Directory
	publisher Publisher
	validate  *validator.Validate
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(users services.Directory, publisher Publisher) *Dispatcher {
	return &Dispatcher{
		users:     users,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// HandleDelivery runs the request carried by msg and publishes the reply.
// Request failures are replied, not returned: only a failed reply is an
// error, so that the broker redelivers the request.
func (d *Dispatcher) HandleDelivery(msg amqp.Delivery) error {
	topic := msg.Type
	uid := msg.CorrelationId

	result, err := d.Dispatch(topic, msg.Body)

	var (
		replyType string
		body      []byte
	)
	if err != nil {
		log.Printf("Error in request %s (uid %s): %v", topic, uid, err)
		replyType = ReplyTopic("error", topic, uid)
		body, _ = json.Marshal(map[string]string{"message": err.Error()})
	} else {
		replyType = ReplyTopic("done", topic, uid)
		body, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal %s result: %w", topic, err)
		}
	}

	if msg.ReplyTo == "" {
		return nil
	}
	return d.publisher.Reply(msg.ReplyTo, uid, replyType, body)
}

// Dispatch runs the store operation for topic with the JSON body.
func (d *Dispatcher) Dispatch(topic string, body []byte) (interface{}, error) {
	switch topic {
	case TopicList:
		return d.users.List(), nil

	case TopicRead:
		id, err := decodeKey(body, "id")
		if err != nil {
			return nil, err
		}
		return d.users.Read(id)

	case TopicReadByUsername:
		username, err := decodeKey(body, "username")
		if err != nil {
			return nil, err
		}
		return d.users.ByUsername(username)

	case TopicAuth:
		var req AuthRequest
		if err := d.decode(body, &req); err != nil {
			return nil, err
		}
		return d.users.VerifyPassword(req.Username, req.Password)

	case TopicPassword:
		var req PasswordRequest
		if err := d.decode(body, &req); err != nil {
			return nil, err
		}
		return d.users.UpdatePassword(req.Username, req.OldPassword, req.NewPassword)

	case TopicCreate:
		var candidate models.NewUser
		if err := d.decode(body, &candidate); err != nil {
			return nil, err
		}
		return d.users.Create(candidate)

	case TopicUpdate:
		var req UpdateRequest
		if err := d.decode(body, &req); err != nil {
			return nil, err
		}
		return d.users.Update(req.ID, req.UserPatch)

	case TopicDelete:
		id, err := decodeKey(body, "id")
		if err != nil {
			return nil, err
		}
		return d.users.Delete(id)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

func (d *Dispatcher) decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := d.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// decodeKey accepts a JSON string or an object carrying the value under key.
func decodeKey(body []byte, key string) (string, error) {
	body = bytes.TrimSpace(body)

	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s, nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		if s, ok := obj[key].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: expected a %s", ErrBadRequest, key)
}

// ReplyTopic builds the reply type for a request, e.g.
// "done:wfm:user:read:<uid>".
func ReplyTopic(prefix, topic, uid string) string {
	if uid == "" {
		return prefix + ":" + topic
	}
	return prefix + ":" + topic + ":" + uid
}
