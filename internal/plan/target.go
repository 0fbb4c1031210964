package plan

import (
	"fmt"

	"treesync/internal/model"
)

const DefaultSSHPort = 22

//Target describes where the plan runs. With a remote locality the destination side of every
//operation is reached over ssh/scp and the source side is local.
type Target struct {
	Locality  model.Locality `json:"locality" yaml:"locality" mapstructure:"locality"`
	SSHUser   string         `json:"sshUser,omitempty" yaml:"ssh_user,omitempty" mapstructure:"ssh_user"`
	SSHHost   string         `json:"sshHost,omitempty" yaml:"ssh_host,omitempty" mapstructure:"ssh_host"`
	SSHPort   int            `json:"sshPort,omitempty" yaml:"ssh_port,omitempty" mapstructure:"ssh_port"`
	LeftRoot  string         `json:"leftRoot" yaml:"left_root" mapstructure:"left_root"`
	RightRoot string         `json:"rightRoot" yaml:"right_root" mapstructure:"right_root"`
}

func (t Target) IsRemote() bool {
	return t.Locality == model.Remote
}

//Root returns the configured root of a side.
func (t Target) Root(side model.Direction) string {
	if side == model.Left {
		return t.LeftRoot
	}
	return t.RightRoot
}

//normalized fills the defaults: local locality and port 22.
func (t Target) normalized() Target {
	if t.Locality == "" {
		t.Locality = model.Local
	}
	if t.IsRemote() && t.SSHPort == 0 {
		t.SSHPort = DefaultSSHPort
	}
	return t
}

func (t Target) Validate() error {
	t = t.normalized()
	switch t.Locality {
	case model.Local:
		return nil
	case model.Remote:
	default:
		return fmt.Errorf("%w: unknown locality %q", ErrInvalidTarget, t.Locality)
	}
	if t.SSHUser == "" {
		return fmt.Errorf("%w: ssh user is required for a remote target", ErrInvalidTarget)
	}
	if t.SSHHost == "" {
		return fmt.Errorf("%w: ssh host is required for a remote target", ErrInvalidTarget)
	}
	if t.SSHPort < 1 || t.SSHPort > 65535 {
		return fmt.Errorf("%w: ssh port %d is out of range", ErrInvalidTarget, t.SSHPort)
	}
	return nil
}
