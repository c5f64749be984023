package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

var machineID = utils.MachineID

// ResolveDeviceID returns the persisted device id, creating and persisting one
// on first use. The platform machine id is preferred; when it is unavailable a
// random id is generated. The random id only correlates registrations and
// must not be relied on for anything else.
func ResolveDeviceID(store storage.Store, log logrus.FieldLogger) (string, error) {
	if id, ok := store.Get(storage.KeyDeviceID); ok && id != "" {
		return id, nil
	}

	id, err := machineID()
	if err != nil {
		log.WithError(err).Debug("Machine id unavailable, generating device id")
		id = fmt.Sprintf("device-%d-%s", time.Now().UnixMilli(), uuid.NewString())
	}

	if err := store.Set(map[string]string{storage.KeyDeviceID: id}); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}
	return id, nil
}
