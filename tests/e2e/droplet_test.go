//go:build e2e

package e2e

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/dropkit/internal/cloudinit"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/provisioning"
)

var _ = Describe("Droplet provisioning", Ordered, func() {
	var log *provisioning.LogrObserver

	BeforeAll(func() {
		log = provisioning.NewLogrObserver(provisioning.NewLogger(GinkgoWriter, provisioning.LogFormatText, 1))
	})

	It("plans without touching the account", func() {
		cfg := newConfig("plan")

		plan, err := provisioning.Plan(cfg, source)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Steps).To(Equal([]string{
			provisioning.StepReadLocalKey,
			provisioning.StepReconcileKey,
			provisioning.StepRenderCloudConfig,
			provisioning.StepCreateDroplet,
			provisioning.StepWaitForAddress,
		}))
		Expect(plan.CloudConfig).To(HavePrefix(cloudinit.Header))
	})

	It("reconciles the local key idempotently", func(ctx SpecContext) {
		cfg := newConfig("keys")
		reconciler := keys.NewReconciler(client, source,
			keys.WithMatchFunc(keys.MatcherFor(cfg.KeyMatch)),
			keys.WithLogger(log.Logger().WithName("keys")))

		first, err := reconciler.Reconcile(ctx, cfg.Name, cfg.KeyName)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Fingerprint).NotTo(BeEmpty())

		second, err := reconciler.Reconcile(ctx, cfg.Name, cfg.KeyName)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Created).To(BeFalse())
		Expect(second.Fingerprint).To(Equal(first.Fingerprint))
	}, SpecTimeout(2*time.Minute))

	It("creates a cloud-init droplet and reports its address", func(ctx SpecContext) {
		cfg := newConfig("apply")
		reconciler := keys.NewReconciler(client, source,
			keys.WithMatchFunc(keys.MatcherFor(cfg.KeyMatch)),
			keys.WithLogger(log.Logger().WithName("keys")))

		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		pctx := provisioning.NewContext(runCtx, cfg, client, source, reconciler, log)
		outputs, err := provisioning.Provision(pctx)
		Expect(err).NotTo(HaveOccurred())

		By("checking the reported outputs")
		Expect(net.ParseIP(outputs.IPv4Address).To4()).NotTo(BeNil())
		Expect(outputs.PrivateKeyPath).To(Equal(source.PrivateKeyPath(cfg.KeyName)))
		Expect(outputs.CloudConfig).To(ContainSubstring(cfg.Username))

		By("checking the droplet carries the run tag")
		droplet, err := client.GetDroplet(ctx, pctx.State.Machine.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(droplet.IPv4).To(Equal(outputs.IPv4Address))

		tagged, _, err := client.GodoClient().Droplets.ListByTag(ctx, testTag, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(tagged).To(ContainElement(HaveField("ID", pctx.State.Machine.ID)))
	}, SpecTimeout(12*time.Minute))
})
