package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
)

func TestDeployMessage(t *testing.T) {
	msg := DeployMessage("deployments", "project-1", []byte(`{"id":"project-1"}`))

	assert.Equal(t, "deployments", msg.Topic)
	assert.Equal(t, sarama.StringEncoder("project-1"), msg.Key)
	assert.Equal(t, sarama.ByteEncoder(`{"id":"project-1"}`), msg.Value)
}
