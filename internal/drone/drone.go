package drone

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	errs "TagDock/internal/errors"
	"TagDock/internal/schedule"
	"TagDock/internal/state"
	"TagDock/internal/utils"

	"github.com/benbjohnson/clock"
	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Writer sends a message to every connected endpoint. *gomavlib.Node
// satisfies it.
type Writer interface {
	WriteMessageAll(msg message.Message) error
}

// BridgeConfig holds the autopilot addressing and publishing parameters.
type BridgeConfig struct {
	TargetSystem    uint8
	TargetComponent uint8
	// PublishRate is how often the current rel_setpoint is streamed, in Hz.
	PublishRate float64
	// Altitude is the hold altitude above the local origin, meters.
	Altitude    float64
	AckTimeout  time.Duration
	AckAttempts int
	// CaptureInitialPose records the vehicle pose as the initial pose the
	// first time offboard mode is seen.
	CaptureInitialPose bool
}

// Bridge is the flight-controller side of the shared command channel. It
// streams rel_setpoint as position targets, forwards land_now as a land
// command and reports offboard status and the current pose back.
//
// rel_setpoint is vehicle-relative (X right, Y forward) and is rotated by the
// initial yaw into local NED before the initial position is added.
type Bridge struct {
	node   Writer
	ch     *state.Channel
	clk    clock.Clock
	cfg    BridgeConfig
	logger *zap.SugaredLogger

	ackChan chan *common.MessageCommandAck
	start   time.Time

	// owned by the event goroutine
	pose         state.Pose
	havePosition bool
	haveAttitude bool
	offboard     bool
	captured     bool
}

func NewBridge(node Writer, ch *state.Channel, clk clock.Clock, cfg BridgeConfig, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{
		node:    node,
		ch:      ch,
		clk:     clk,
		cfg:     cfg,
		logger:  logger,
		ackChan: make(chan *common.MessageCommandAck, 1),
		start:   clk.Now(),
	}
}

// Prime registers the keys the bridge owns so startup validation passes
// before the autopilot has been heard from: offboard starts false and, when
// the initial pose is captured from the vehicle, a zero placeholder is
// written if none was seeded.
func (b *Bridge) Prime() error {
	if err := b.ch.SetOffboardReady(false); err != nil {
		return err
	}
	if !b.cfg.CaptureInitialPose {
		return nil
	}
	if _, err := b.ch.Pose(state.InitialPose); err == nil {
		return nil
	}
	return b.ch.SetPose(state.InitialPose, state.Pose{})
}

// Run pumps autopilot events, publishes setpoints and forwards the land
// request until ctx is done. The land command runs on its own goroutine so
// the setpoint stream never stalls while an ack is pending.
func (b *Bridge) Run(ctx context.Context, events <-chan gomavlib.Event) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.monitorEventLog(gctx, events) })
	g.Go(func() error { return b.publishLoop(gctx) })
	g.Go(func() error { return b.landLoop(gctx) })

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func (b *Bridge) monitorEventLog(ctx context.Context, events <-chan gomavlib.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return fmt.Errorf("mavlink event stream closed")
			}
			switch e := evt.(type) {
			case *gomavlib.EventFrame:
				b.handleMessage(e.Frame.GetMessage())
			case *gomavlib.EventChannelOpen:
				b.logger.Infow("mavlink channel open", "channel", e.Channel)
			case *gomavlib.EventChannelClose:
				b.logger.Warnw("mavlink channel closed", "channel", e.Channel)
			}
		}
	}
}

func (b *Bridge) handleMessage(msg message.Message) {
	switch msg := msg.(type) {
	case *common.MessageHeartbeat:
		// cameras, gimbals, companions and ground stations carry no flight mode
		if msg.Type == common.MAV_TYPE_GCS || msg.Autopilot == common.MAV_AUTOPILOT_INVALID {
			return
		}
		offboard := isOffboard(msg)
		if offboard != b.offboard {
			b.logger.Infow("autopilot mode changed", "mode", mainMode(msg).String(), "offboard", offboard)
			b.offboard = offboard
		}
		if err := b.ch.SetOffboardReady(offboard); err != nil {
			b.logger.Warnw("failed to publish offboard status", "error", err)
		}
		b.captureInitialPose()
	case *common.MessageLocalPositionNed:
		// local NED: X north, Y east; the channel uses X east, Y north
		b.pose.X = float64(msg.Y)
		b.pose.Y = float64(msg.X)
		b.havePosition = true
		b.publishPose()
		b.captureInitialPose()
	case *common.MessageAttitudeQuaternion:
		b.pose.Yaw = utils.QuaternionYaw(float64(msg.Q1), float64(msg.Q2), float64(msg.Q3), float64(msg.Q4))
		b.haveAttitude = true
		b.publishPose()
		b.captureInitialPose()
	case *common.MessageCommandAck:
		select {
		case b.ackChan <- msg:
		default:
			b.logger.Debugw("dropping unexpected command ack", "command", msg.Command.String())
		}
	}
}

func (b *Bridge) publishPose() {
	if err := b.ch.SetPose(state.CurrentPose, b.pose); err != nil {
		b.logger.Warnw("failed to publish vehicle pose", "error", err)
	}
}

// captureInitialPose latches the first full pose seen in offboard mode as
// the initial pose.
func (b *Bridge) captureInitialPose() {
	if !b.cfg.CaptureInitialPose || b.captured || !b.offboard || !b.havePosition || !b.haveAttitude {
		return
	}
	if err := b.ch.SetPose(state.InitialPose, b.pose); err != nil {
		b.logger.Warnw("failed to record initial pose", "error", err)
		return
	}
	b.captured = true
	b.logger.Infow("initial pose captured", "x", b.pose.X, "y", b.pose.Y, "yaw", b.pose.Yaw)
}

func (b *Bridge) publishLoop(ctx context.Context) error {
	ticker := b.clk.Ticker(schedule.Period(b.cfg.PublishRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.publishSetpoint(); err != nil {
				b.logger.Warnw("failed to publish setpoint", "error", err)
			}
		}
	}
}

// landLoop waits for land_now and sends the land command. After Land
// returns, acked or not, nothing is sent again.
func (b *Bridge) landLoop(ctx context.Context) error {
	ticker := b.clk.Ticker(schedule.Period(b.cfg.PublishRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !b.ch.LandRequested() {
			continue
		}
		if err := b.Land(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Errorw("land command failed, giving up", "error", err)
		}
		return nil
	}
}

const setpointTypeMask = common.POSITION_TARGET_TYPEMASK_VX_IGNORE |
	common.POSITION_TARGET_TYPEMASK_VY_IGNORE |
	common.POSITION_TARGET_TYPEMASK_VZ_IGNORE |
	common.POSITION_TARGET_TYPEMASK_AX_IGNORE |
	common.POSITION_TARGET_TYPEMASK_AY_IGNORE |
	common.POSITION_TARGET_TYPEMASK_AZ_IGNORE |
	common.POSITION_TARGET_TYPEMASK_YAW_RATE_IGNORE

// publishSetpoint converts rel_setpoint, an offset from the initial pose in
// the initial heading frame, into a local NED position target.
func (b *Bridge) publishSetpoint() error {
	initial, err := b.ch.Pose(state.InitialPose)
	if err != nil {
		return err
	}
	rel := b.ch.RelSetpoint()
	sin, cos := math.Sincos(initial.Yaw)

	msg := &common.MessageSetPositionTargetLocalNed{
		TimeBootMs:      uint32(b.clk.Since(b.start).Milliseconds()),
		TargetSystem:    b.cfg.TargetSystem,
		TargetComponent: b.cfg.TargetComponent,
		CoordinateFrame: common.MAV_FRAME_LOCAL_NED,
		TypeMask:        setpointTypeMask,
		X:               float32(initial.Y + rel.Y*cos - rel.X*sin),
		Y:               float32(initial.X + rel.Y*sin + rel.X*cos),
		Z:               float32(-b.cfg.Altitude),
		Yaw:             float32(initial.Yaw + rel.Yaw),
	}

	return b.node.WriteMessageAll(msg)
}

// Land commands the autopilot to land in place and waits for the ack.
func (b *Bridge) Land(ctx context.Context) error {
	b.logger.Infow("landing now")
	cmdLand := &common.MessageCommandLong{
		TargetSystem:    b.cfg.TargetSystem,
		TargetComponent: b.cfg.TargetComponent,
		Command:         common.MAV_CMD_NAV_LAND,
	}
	return b.sendCommand(ctx, cmdLand)
}

var errCommandRejected = errors.New("command rejected")

func (b *Bridge) sendCommand(ctx context.Context, cmd *common.MessageCommandLong) error {
	checkAck := func() error {
		timer := b.clk.Timer(b.cfg.AckTimeout)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ack := <-b.ackChan:
				if ack.Command != cmd.Command {
					continue
				}
				if ack.Result != common.MAV_RESULT_ACCEPTED {
					return fmt.Errorf("%w: %s", errCommandRejected, ack.Result.String())
				}
				return nil
			case <-timer.C:
				return context.DeadlineExceeded
			}
		}
	}

	for i := 0; i < b.cfg.AckAttempts; i++ {
		cmd.Confirmation = uint8(i)
		if err := b.node.WriteMessageAll(cmd); err != nil {
			return fmt.Errorf("send %s: %w", cmd.Command.String(), err)
		}
		b.logger.Infow("command sent", "command", cmd.Command.String(), "attempt", i+1)

		err := checkAck()
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, errCommandRejected):
			return fmt.Errorf("%s %w: %w", cmd.Command.String(), errs.ErrCommandNotAcked, err)
		}
		b.logger.Warnw("no ack for command", "command", cmd.Command.String(), "attempt", i+1)
	}

	return fmt.Errorf("%s after %d attempts: %w", cmd.Command.String(), b.cfg.AckAttempts, errs.ErrCommandNotAcked)
}
