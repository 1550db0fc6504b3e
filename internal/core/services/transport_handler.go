package services

import (
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driving"
)

// Ensure TransportHandler implements the interface.
var _ driving.TransportHandler = (*TransportHandler)(nil)

// Result messages reported to the replication queue.
const (
	msgDone          = "Done"
	msgGone          = "Replication content gone."
	msgNoAPIType     = "No message API type."
	msgNoContentType = "No message content type."
	msgNoHandler     = "No transport plugin found for this request."
	msgDelivered     = "DWRE"
)

// TransportHandler dispatches delivery documents to transport plugins.
type TransportHandler struct {
	plugins *RankedRegistry[driven.TransportPlugin]
	metrics driven.MetricsSink
}

// NewTransportHandler creates a transport handler. metrics may be nil.
func NewTransportHandler(plugins *RankedRegistry[driven.TransportPlugin], metrics driven.MetricsSink) *TransportHandler {
	return &TransportHandler{plugins: plugins, metrics: metrics}
}

// Deliver hands content to every transport plugin matching its api and
// content type, in rank order, and aggregates their results.
func (h *TransportHandler) Deliver(
	ctx context.Context,
	action domain.ReplicationAction,
	content *domain.Artifact,
	log driven.ReplicationLog,
) (domain.ReplicationResult, error) {
	if log == nil {
		return domain.ReplicationResult{}, domain.ErrNoReplicationLog
	}

	if content != nil && content.Void && action.Type == domain.ActionActivate {
		log.Info("Nothing to replicate for %s", action.Path)
		return domain.ReplicationResult{State: domain.StateNoContent, Success: true, StatusCode: domain.CodeDone, Message: msgDone}, nil
	}

	switch action.Type {
	case domain.ActionActivate, domain.ActionDeactivate, domain.ActionDelete:
	default:
		log.Error("Replication action %s not supported", action.Type)
		return domain.ReplicationResult{State: domain.StateUnsupportedAction},
			fmt.Errorf("%w: %s", domain.ErrUnsupportedAction, action.Type)
	}

	if content.IsEmpty() {
		log.Debug("No message body: No content to deliver")
		return domain.ReplicationResult{State: domain.StateNoContent, Success: true, StatusCode: domain.CodeGone, Message: msgGone}, nil
	}

	delivery, err := readDelivery(content)
	if err != nil {
		return domain.ReplicationResult{State: domain.StateInvalid}, err
	}

	apiType, contentType := delivery.APIType(), delivery.ContentType()
	if apiType == "" {
		log.Error(msgNoAPIType)
		return h.finish(delivery, domain.ReplicationResult{State: domain.StateInvalid, StatusCode: domain.CodeUnprocessable, Message: msgNoAPIType}), nil
	}
	if contentType == "" {
		log.Error(msgNoContentType)
		return h.finish(delivery, domain.ReplicationResult{State: domain.StateInvalid, StatusCode: domain.CodeUnprocessable, Message: msgNoContentType}), nil
	}

	success, handled := true, false
	for _, plugin := range h.plugins.Snapshot() {
		if !plugin.CanHandle(apiType, contentType) {
			continue
		}
		handled = true
		log.Debug("Send data: api: %s content type: %s using %s", apiType, contentType, plugin.Name())
		ok, err := plugin.Deliver(ctx, delivery, action, log)
		if err != nil {
			log.Error("Transport %s failed: %v", plugin.Name(), err)
			h.finish(delivery, domain.ReplicationResult{State: domain.StateDelivered})
			return domain.ReplicationResult{State: domain.StateDelivered}, fmt.Errorf("transport %s: %w", plugin.Name(), err)
		}
		if !ok {
			success = false
			break
		}
	}

	if !handled {
		log.Error("No transport plugin found for this request - api: %s / content type: %s", apiType, contentType)
		return h.finish(delivery, domain.ReplicationResult{State: domain.StateNoHandler, StatusCode: domain.CodeUnprocessable, Message: msgNoHandler}), nil
	}

	code := domain.CodeOK
	if action.Type != domain.ActionActivate {
		code = domain.CodeNoContent
	}
	if success {
		log.Info("Replication (%s) of %s successful.", action.Type, action.Path)
	} else {
		log.Info("Replication (%s) of %s not successful.", action.Type, action.Path)
	}
	return h.finish(delivery, domain.ReplicationResult{State: domain.StateDelivered, Success: success, StatusCode: code, Message: msgDelivered}), nil
}

func (h *TransportHandler) finish(delivery *domain.Delivery, res domain.ReplicationResult) domain.ReplicationResult {
	if h.metrics != nil {
		h.metrics.DeliveryCompleted(delivery.APIType(), delivery.ContentType(), res.State, res.Success)
	}
	return res
}

func readDelivery(content *domain.Artifact) (*domain.Delivery, error) {
	if content.ContentType != domain.ContentTypeJSON {
		return nil, fmt.Errorf("%w: content type %s", domain.ErrUnsupportedType, content.ContentType)
	}
	rc, err := content.Open()
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return domain.ParseDelivery(data)
}
