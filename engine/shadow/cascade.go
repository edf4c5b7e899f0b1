package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/engine/light"
)

// CascadeSplitDistances partitions the depth range [near, far] into
// cascadeCount intervals and returns the far distance of each interval. The
// splits blend a logarithmic distribution (tight cascades near the camera,
// where shadow texels are most visible) with a uniform one, weighted by
// lambda: 1 is fully logarithmic, 0 is fully uniform.
//
// Parameters:
//   - cascadeCount: number of cascades; must be >= 1
//   - near: near clip distance of the partitioned range; must be > 0
//   - far: far clip distance; must be > near
//   - lambda: blend factor, clamped to [0, 1]
//
// Returns:
//   - []float32: cascadeCount strictly increasing distances, the last == far
func CascadeSplitDistances(cascadeCount int, near, far, lambda float32) []float32 {
	if cascadeCount < 1 || near <= 0 || far <= near {
		return nil
	}
	if lambda < 0 {
		lambda = 0
	} else if lambda > 1 {
		lambda = 1
	}

	splits := make([]float32, cascadeCount)
	ratio := float64(far / near)
	for i := 1; i <= cascadeCount; i++ {
		fraction := float64(i) / float64(cascadeCount)
		logSplit := float64(near) * math.Pow(ratio, fraction)
		uniformSplit := float64(near) + float64(far-near)*fraction
		splits[i-1] = lambda*float32(logSplit) + (1-lambda)*float32(uniformSplit)
	}
	// Guard against float drift on the final split.
	splits[cascadeCount-1] = far
	return splits
}

type cascadedShadowMapImpl struct {
	light    light.Light
	splits   []float32
	cascades []*Map
	near     float32
	far      float32
}

// CascadedShadowMap carries one shadow map per cascade for a directional
// light, each covering a successively deeper and wider slice of the view
// range. Split distances are the far edge of each cascade's slice.
type CascadedShadowMap interface {
	// Light returns the directional light the cascades belong to.
	//
	// Returns:
	//   - light.Light: the light
	Light() light.Light

	// SplitDistances returns the far distance of each cascade, strictly
	// increasing, the last equal to the partitioned far plane.
	//
	// Returns:
	//   - []float32: a copy of the split distances
	SplitDistances() []float32

	// Cascades returns the per-cascade shadow maps in near-to-far order.
	//
	// Returns:
	//   - []*Map: the cascade maps
	Cascades() []*Map

	// Refresh recomputes every cascade's matrices from the light's current
	// state. Call once per frame before rendering the cascade passes.
	Refresh()

	// Dispose releases every cascade's depth target.
	Dispose()
}

var _ CascadedShadowMap = &cascadedShadowMapImpl{}

func (m *managerImpl) NewCascadedShadowMap(l light.Light, cascadeCount int, lambda, near, far float32) (CascadedShadowMap, error) {
	splits := CascadeSplitDistances(cascadeCount, near, far, lambda)
	if splits == nil {
		return nil, errors.Errorf("shadow: invalid cascade parameters (count=%d near=%f far=%f)", cascadeCount, near, far)
	}

	csm := &cascadedShadowMapImpl{
		light:    l,
		splits:   splits,
		cascades: make([]*Map, 0, cascadeCount),
		near:     near,
		far:      far,
	}
	for i := 0; i < cascadeCount; i++ {
		target, err := m.gpu.CreateShadowDepthTexture(m.resolution, m.resolution)
		if err != nil {
			csm.Dispose()
			return nil, errors.Wrapf(err, "shadow: failed to allocate cascade %d depth target", i)
		}
		csm.cascades = append(csm.cascades, &Map{Light: l, Index: i, Target: target})
	}
	csm.Refresh()
	m.sink.Debugf("shadow: allocated %d cascades for directional light", cascadeCount)
	return csm, nil
}

func (c *cascadedShadowMapImpl) Light() light.Light {
	return c.light
}

func (c *cascadedShadowMapImpl) SplitDistances() []float32 {
	out := make([]float32, len(c.splits))
	copy(out, c.splits)
	return out
}

func (c *cascadedShadowMapImpl) Cascades() []*Map {
	return c.cascades
}

func (c *cascadedShadowMapImpl) Refresh() {
	halfExtent, shadowNear, shadowFar := c.light.ShadowExtent()
	view := c.light.ViewMatrix()
	for i, sm := range c.cascades {
		// Each cascade's orthographic box grows with its split distance so
		// near cascades spend their texels on a small region. The box is
		// centered on the light's view, not refit to the camera frustum.
		extent := halfExtent * (c.splits[i] / c.far)
		sm.ViewMatrix = view
		sm.ProjectionMatrix = mgl32.Ortho(-extent, extent, -extent, extent, shadowNear, shadowFar)
		sm.ViewProjectionMatrix = sm.ProjectionMatrix.Mul4(sm.ViewMatrix)
	}
}

func (c *cascadedShadowMapImpl) Dispose() {
	for _, sm := range c.cascades {
		if sm.Target != nil {
			sm.Target.Release()
		}
	}
	c.cascades = nil
}
